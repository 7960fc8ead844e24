// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package broker implements Courier's in-process topic pub/sub.
//
// Three pieces cooperate:
//
//   - [Registry] is an arena that owns every [Mailbox] for one payload
//     type and hands out generational [ID] handles for them.
//   - [Mailbox] is a bounded FIFO ring buffer. A push onto a full
//     mailbox evicts the oldest message.
//   - [Broker] maps topic strings to lists of mailbox IDs and fans
//     published messages out to every live subscriber.
//
// The component that reads a mailbox owns it: it opens it from the
// registry, subscribes it to topics, and closes it when done. The
// broker never owns a mailbox. Closing bumps the slot generation, so
// every ID the broker still holds for that mailbox stops resolving;
// the broker drops such entries the next time it walks the topic
// (Publish or Unsubscribe), and deletes a topic as soon as its list is
// empty. A topic therefore exists only while it has at least one
// subscriber entry.
//
// Payload types implement [Cloner]. Every subscriber gets its own
// clone, and [Mailbox.Peek] returns a clone, so no two holders share
// mutable state.
//
// None of these types is safe for concurrent use. They belong to a
// single goroutine, normally the host loop's tick; other goroutines
// hand work to it through channels.
package broker
