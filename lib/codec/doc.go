// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds Courier's binary serialization configuration.
//
// Every frame that crosses the RPC transport (requests from a remote
// client, responses from the server) is a single CBOR data item
// encoded with the modes defined here. Both sides of the wire import
// this package, so encoding options can only change in one place.
// The wire contract is closed and versionless: there is no protocol
// negotiation, and a frame that does not decode is dropped by the
// receiver.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, shortest integer forms, no indefinite-length items.
// The same request always produces the same bytes, which keeps test
// fixtures stable.
//
//	data, err := codec.Marshal(request)
//	err = codec.Unmarshal(data, &response)
//
// Wire types use `cbor` struct tags. Types that carry a variant
// (commands, replies) implement MarshalCBOR/UnmarshalCBOR and use
// [RawMessage] to defer decoding of the variant body until its kind is
// known.
package codec
