// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package broker

import "fmt"

// Cloner is implemented by payload types carried through a Broker.
type Cloner[T any] interface {
	Clone() T
}

// ID addresses a mailbox slot in a Registry. The zero ID never
// resolves. IDs are comparable and remain unique for the lifetime of
// the registry: a reused slot carries a higher generation.
type ID struct {
	index      uint32
	generation uint32
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == ID{} }

func (id ID) String() string {
	return fmt.Sprintf("mailbox-%d.%d", id.index, id.generation)
}

type slot[T Cloner[T]] struct {
	generation uint32
	mailbox    *Mailbox[T]
}

// Registry owns the storage for every mailbox of one payload type.
type Registry[T Cloner[T]] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// NewRegistry returns an empty registry.
func NewRegistry[T Cloner[T]]() *Registry[T] {
	return &Registry[T]{}
}

// Open allocates a mailbox. The caller owns it and must Close it.
func (r *Registry[T]) Open(options ...Option) *Mailbox[T] {
	config := mailboxConfig{capacity: DefaultCapacity}
	for _, option := range options {
		option(&config)
	}
	if config.capacity <= 0 {
		config.capacity = DefaultCapacity
	}

	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		index = uint32(len(r.slots))
		r.slots = append(r.slots, slot[T]{})
	}

	s := &r.slots[index]
	s.generation++
	mailbox := &Mailbox[T]{
		id:       ID{index: index, generation: s.generation},
		registry: r,
		buffer:   make([]T, config.capacity),
	}
	s.mailbox = mailbox
	r.live++
	return mailbox
}

// Resolve returns the live mailbox for id, or false when the mailbox
// has been closed or id was never issued by this registry.
func (r *Registry[T]) Resolve(id ID) (*Mailbox[T], bool) {
	if int(id.index) >= len(r.slots) {
		return nil, false
	}
	s := r.slots[id.index]
	if s.mailbox == nil || s.generation != id.generation {
		return nil, false
	}
	return s.mailbox, true
}

// Len returns the number of open mailboxes.
func (r *Registry[T]) Len() int { return r.live }

func (r *Registry[T]) release(id ID) {
	s := &r.slots[id.index]
	if s.generation != id.generation || s.mailbox == nil {
		return
	}
	s.mailbox = nil
	// Bump now so stale IDs fail even before the slot is reused.
	s.generation++
	r.free = append(r.free, id.index)
	r.live--
}
