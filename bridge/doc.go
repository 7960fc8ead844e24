// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge relays RPC frames between two transports.
//
// A client that can only speak one scheme (say, a tool with a plain
// TCP socket) reaches a server listening on another (a WebSocket
// endpoint) through a [Bridge]: the bridge listens on ListenAddress,
// dials TargetAddress for every accepted connection, and copies frames
// in both directions. Frames are relayed whole and never decoded, so
// the bridge is independent of the wire vocabulary.
//
// Start checks that the target is reachable, binds the listener, and
// accepts in a background goroutine. Stop closes the listener and
// every relayed connection; Wait blocks until all relays have drained.
// Address returns the bound address, which carries the real port when
// port 0 was requested.
package bridge
