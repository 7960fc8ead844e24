// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"github.com/courier-editor/courier/broker"
	"github.com/courier-editor/courier/rpc"
)

// Message is anything published on the editor broker. The set of
// implementations is closed.
type Message interface {
	// Topic derives the topic from the message alone.
	Topic() string
	Clone() Message
	message()
}

// Broker and Mailbox are the broker types instantiated for Message.
type (
	Broker   = broker.Broker[Message]
	Mailbox  = broker.Mailbox[Message]
	Registry = broker.Registry[Message]
)

// NewBroker returns a broker with a fresh registry.
func NewBroker() *Broker {
	return broker.New(broker.NewRegistry[Message]())
}

// Publish sends m on its own topic.
func Publish(b *Broker, m Message) {
	b.Publish(m.Topic(), m)
}

// RPCCommand asks the RPC backend to run Command.
type RPCCommand struct {
	ID      string
	Command rpc.Command
}

// RPCResult carries the outcome of the RPCCommand with the same ID.
type RPCResult struct {
	ID     string
	Result rpc.Result
}

// FileCommand asks the file-system service to perform Request.
type FileCommand struct {
	ID      string
	Request FileRequest
}

// FileResult carries the outcome of the FileCommand with the same ID.
type FileResult struct {
	ID    string
	Reply FileReply
}

// Notify is a user-facing notification.
type Notify struct {
	Text string
}

func (RPCCommand) Topic() string   { return TopicRPCCommand }
func (m RPCResult) Topic() string  { return RPCResultTopic(m.ID) }
func (FileCommand) Topic() string  { return TopicFileCommand }
func (m FileResult) Topic() string { return FileResultTopic(m.ID) }
func (Notify) Topic() string       { return TopicNotify }

// Commands are immutable values, so a shallow copy is a clone.
func (m RPCCommand) Clone() Message { return m }

func (m RPCResult) Clone() Message {
	return RPCResult{ID: m.ID, Result: m.Result.Clone()}
}

func (m FileCommand) Clone() Message {
	if m.Request != nil {
		m.Request = m.Request.cloneRequest()
	}
	return m
}

func (m FileResult) Clone() Message {
	if m.Reply != nil {
		m.Reply = m.Reply.cloneReply()
	}
	return m
}

func (m Notify) Clone() Message { return m }

func (RPCCommand) message()  {}
func (RPCResult) message()   {}
func (FileCommand) message() {}
func (FileResult) message()  {}
func (Notify) message()      {}
