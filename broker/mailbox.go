// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package broker

// DefaultCapacity is the mailbox capacity when none is given.
const DefaultCapacity = 100

type mailboxConfig struct {
	capacity int
}

// Option configures a mailbox at Open.
type Option func(*mailboxConfig)

// WithCapacity sets the ring-buffer size. Non-positive values fall
// back to DefaultCapacity.
func WithCapacity(capacity int) Option {
	return func(c *mailboxConfig) { c.capacity = capacity }
}

// Mailbox is a bounded FIFO ring buffer owned by one subscriber.
type Mailbox[T Cloner[T]] struct {
	id       ID
	registry *Registry[T]
	buffer   []T
	head     int
	length   int
	closed   bool
}

// ID returns the handle the Broker stores for this mailbox.
func (m *Mailbox[T]) ID() ID { return m.id }

// Len returns the number of queued messages.
func (m *Mailbox[T]) Len() int { return m.length }

// Cap returns the fixed capacity.
func (m *Mailbox[T]) Cap() int { return len(m.buffer) }

// Push appends message, evicting the oldest one when full. A closed
// mailbox discards the message.
func (m *Mailbox[T]) Push(message T) {
	if m.closed {
		return
	}
	capacity := len(m.buffer)
	if m.length == capacity {
		m.buffer[m.head] = message
		m.head = (m.head + 1) % capacity
		return
	}
	m.buffer[(m.head+m.length)%capacity] = message
	m.length++
}

// Next removes and returns the oldest message.
func (m *Mailbox[T]) Next() (T, bool) {
	var zero T
	if m.length == 0 {
		return zero, false
	}
	message := m.buffer[m.head]
	m.buffer[m.head] = zero
	m.head = (m.head + 1) % len(m.buffer)
	m.length--
	return message, true
}

// Peek returns a clone of the oldest message without removing it.
func (m *Mailbox[T]) Peek() (T, bool) {
	if m.length == 0 {
		var zero T
		return zero, false
	}
	return m.buffer[m.head].Clone(), true
}

// Drain removes and returns every queued message, oldest first.
func (m *Mailbox[T]) Drain() []T {
	if m.length == 0 {
		return nil
	}
	messages := make([]T, 0, m.length)
	for {
		message, ok := m.Next()
		if !ok {
			return messages
		}
		messages = append(messages, message)
	}
}

// Close releases the mailbox. Queued messages are discarded and every
// copy of its ID stops resolving. Close is idempotent.
func (m *Mailbox[T]) Close() {
	if m.closed {
		return
	}
	m.closed = true
	var zero T
	for i := range m.buffer {
		m.buffer[i] = zero
	}
	m.length = 0
	m.registry.release(m.id)
}

// Closed reports whether Close has been called.
func (m *Mailbox[T]) Closed() bool { return m.closed }
