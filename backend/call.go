// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"github.com/courier-editor/courier/broker"
	"github.com/courier-editor/courier/contract"
	"github.com/courier-editor/courier/rpc"
)

// Pending is an RPC request waiting for its result.
type Pending struct {
	ID string

	broker  *contract.Broker
	mailbox *contract.Mailbox
}

// Call publishes command under a fresh correlation id. The result
// mailbox is subscribed first, so a local backend that answers during
// the same tick cannot be missed.
func Call(b *contract.Broker, command rpc.Command) *Pending {
	id := contract.NewID()
	mailbox := b.Registry().Open(broker.WithCapacity(1))
	b.Subscribe(contract.RPCResultTopic(id), mailbox)
	contract.Publish(b, contract.RPCCommand{ID: id, Command: command})
	return &Pending{ID: id, broker: b, mailbox: mailbox}
}

// Result returns the result once it has been published. The first
// successful call releases the subscription.
func (p *Pending) Result() (rpc.Result, bool) {
	if p.mailbox.Closed() {
		return rpc.Result{}, false
	}
	for {
		message, ok := p.mailbox.Next()
		if !ok {
			return rpc.Result{}, false
		}
		if result, isResult := message.(contract.RPCResult); isResult && result.ID == p.ID {
			p.Cancel()
			return result.Result, true
		}
	}
}

// Cancel stops waiting. A result published later is dropped by the
// broker.
func (p *Pending) Cancel() {
	if p.mailbox.Closed() {
		return
	}
	_ = p.broker.Unsubscribe(contract.RPCResultTopic(p.ID), p.mailbox.ID())
	p.mailbox.Close()
}
