// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package contract defines the messages that travel through the
// editor's broker and the topics they travel on.
//
// Every [Message] knows its own topic. Request messages go to a fixed
// topic; result messages go to a topic built from a [Template] and the
// request's correlation id, so only the component that made a request
// (and subscribed to that exact topic) sees the answer:
//
//	id := contract.NewID()
//	b.Subscribe(contract.RPCResultTopic(id), mailbox)
//	contract.Publish(b, contract.RPCCommand{ID: id, Command: rpc.Status{}})
//	// ... later, mailbox receives contract.RPCResult{ID: id, ...}
//
// Publishers call [Publish] rather than computing topics themselves.
package contract
