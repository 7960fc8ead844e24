// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package backend bridges the editor broker to the RPC layer.
//
// A [Backend] subscribes a mailbox to rpc/command. On every Update it
// drains that mailbox and routes each [contract.RPCCommand] according
// to its [Strategy]:
//
//   - Local: the command runs in-process and the [contract.RPCResult]
//     is published on rpc/{id}/result before Update returns.
//   - Remote: the command is sent to the server; the result is
//     published on a later Update, once the response arrives. If the
//     remote client is not connected, a Connection failure is
//     published immediately instead.
//
// Connection changes on the remote strategy are announced on the
// notify topic.
//
// [Call] is the requesting side: it subscribes to the result topic of
// a fresh correlation id and then publishes the command.
package backend
