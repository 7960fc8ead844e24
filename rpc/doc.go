// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package rpc is Courier's request/response layer.
//
// The vocabulary is closed: a [Command] is one of [Example], [Echo],
// [Identify], [Status]; a successful [Result] carries a [Reply] that is
// one of [Empty], [EchoReply], [ClientID], [ConnectionStatus]; a failed
// one carries an [*Error] whose [ErrorKind] is fixed. Every dispatch
// point is an exhaustive type switch, so adding a variant means
// visiting each of them.
//
// Two strategies implement [Client]:
//
//   - [LocalClient] runs commands through an [Executor] in-process.
//   - [RemoteClient] sends [Request] frames over a transport connection
//     and yields [Response] frames as they arrive.
//
// [Server] is the other end of the remote strategy: it accepts
// transport connections, decodes requests, runs them through an
// Executor, and writes responses, one request at a time per
// connection.
//
// Wire frames are deterministic CBOR (see lib/codec):
//
//	request  = {id: text, command: {kind: text, body?: map}}
//	response = {id: text, result: {ok: bool, reply?: {kind, body?}, error?: {kind, ...}}}
//
// A frame whose kind is not in the vocabulary fails to decode and is
// dropped by the receiver.
package rpc
