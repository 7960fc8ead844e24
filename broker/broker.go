// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package broker

import (
	"errors"
	"sort"
)

// ErrTopicNotFound is returned by Unsubscribe for a topic that has no
// subscribers.
var ErrTopicNotFound = errors.New("topic not found")

// Broker routes messages by topic to subscribed mailboxes.
type Broker[T Cloner[T]] struct {
	registry *Registry[T]
	topics   map[string][]ID
}

// New returns a broker whose subscribers live in registry.
func New[T Cloner[T]](registry *Registry[T]) *Broker[T] {
	return &Broker[T]{
		registry: registry,
		topics:   make(map[string][]ID),
	}
}

// Registry returns the registry mailboxes for this broker come from.
func (b *Broker[T]) Registry() *Registry[T] { return b.registry }

// Subscribe appends mailbox to topic's subscriber list. A mailbox
// subscribed twice receives every message twice.
func (b *Broker[T]) Subscribe(topic string, mailbox *Mailbox[T]) {
	b.topics[topic] = append(b.topics[topic], mailbox.ID())
}

// Unsubscribe removes every entry for id from topic and drops dead
// entries along the way. An id that is not subscribed is not an error.
func (b *Broker[T]) Unsubscribe(topic string, id ID) error {
	subscribers, ok := b.topics[topic]
	if !ok {
		return ErrTopicNotFound
	}
	kept := subscribers[:0]
	for _, entry := range subscribers {
		if entry == id {
			continue
		}
		if _, alive := b.registry.Resolve(entry); !alive {
			continue
		}
		kept = append(kept, entry)
	}
	b.store(topic, kept)
	return nil
}

// Publish pushes a clone of message into every live mailbox subscribed
// to topic. Dead entries are removed. Publishing to a topic without
// subscribers does nothing.
func (b *Broker[T]) Publish(topic string, message T) {
	subscribers, ok := b.topics[topic]
	if !ok {
		return
	}
	kept := subscribers[:0]
	for _, entry := range subscribers {
		mailbox, alive := b.registry.Resolve(entry)
		if !alive {
			continue
		}
		mailbox.Push(message.Clone())
		kept = append(kept, entry)
	}
	b.store(topic, kept)
}

func (b *Broker[T]) store(topic string, subscribers []ID) {
	if len(subscribers) == 0 {
		delete(b.topics, topic)
		return
	}
	b.topics[topic] = subscribers
}

// Topics returns the topics that currently have subscriber entries,
// sorted.
func (b *Broker[T]) Topics() []string {
	topics := make([]string, 0, len(b.topics))
	for topic := range b.topics {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Subscribers returns the number of entries for topic, including dead
// ones not yet pruned.
func (b *Broker[T]) Subscribers(topic string) int {
	return len(b.topics[topic])
}
