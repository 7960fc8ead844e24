// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport carries RPC frames between a remote client and a
// courier server.
//
// A frame is an opaque byte slice; the rpc package puts one CBOR
// request or response in each. Two transports exist, selected by the
// URL scheme passed to [Dial] and [Listen]:
//
//   - ws://host:port/path: one binary WebSocket message per frame.
//     Text messages are ignored on read. The listener is an HTTP
//     server, so extra handlers (a metrics endpoint, for instance) can
//     share its port via [WithHandler].
//   - tcp://host:port: each frame is preceded by its length as a
//     4-byte big-endian integer.
//
// Frames larger than [MaxFrameSize] are rejected on both transports.
//
// Read errors fall in two groups. Errors matching [ErrClosed] mean the
// connection is finished: the peer went away or Close was called.
// Anything else (an oversize TCP frame that was skipped, for
// instance) leaves the connection usable and the caller may read
// again.
package transport
