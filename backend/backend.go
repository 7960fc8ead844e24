// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/courier-editor/courier/broker"
	"github.com/courier-editor/courier/contract"
	"github.com/courier-editor/courier/rpc"
)

// Strategy selects where commands execute.
type Strategy string

const (
	Local  Strategy = "local"
	Remote Strategy = "remote"
)

// ParseStrategy accepts "local" or "remote".
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case Local, Remote:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want local or remote)", s)
	}
}

// Option configures a Backend.
type Option func(*Backend)

// WithStrategy sets the initial strategy. The default is Local.
func WithStrategy(strategy Strategy) Option {
	return func(b *Backend) { b.strategy = strategy }
}

// WithMailboxCapacity bounds the rpc/command mailbox.
func WithMailboxCapacity(capacity int) Option {
	return func(b *Backend) { b.capacity = capacity }
}

// WithExecutor replaces the local executor.
func WithExecutor(executor *rpc.Executor) Option {
	return func(b *Backend) { b.local = rpc.NewLocalClient(executor) }
}

// WithRemoteClient replaces the remote client.
func WithRemoteClient(client *rpc.RemoteClient) Option {
	return func(b *Backend) { b.remote = client }
}

// Backend routes rpc/command messages. It belongs to the host loop
// goroutine.
type Backend struct {
	logger   *slog.Logger
	broker   *contract.Broker
	strategy Strategy
	capacity int

	mailbox *contract.Mailbox
	local   *rpc.LocalClient
	remote  *rpc.RemoteClient

	// wasConnected tracks the remote state seen by the previous
	// Update, to announce disconnects once.
	wasConnected bool
}

// New subscribes a backend to rpc/command on b.
func New(b *contract.Broker, logger *slog.Logger, options ...Option) *Backend {
	backend := &Backend{
		logger:   logger,
		broker:   b,
		strategy: Local,
		capacity: broker.DefaultCapacity,
	}
	for _, option := range options {
		option(backend)
	}
	if backend.local == nil {
		backend.local = rpc.NewLocalClient(rpc.NewExecutor(logger))
	}
	if backend.remote == nil {
		backend.remote = rpc.NewRemoteClient(logger)
	}

	backend.mailbox = b.Registry().Open(broker.WithCapacity(backend.capacity))
	b.Subscribe(contract.TopicRPCCommand, backend.mailbox)
	return backend
}

// Strategy returns the current strategy.
func (b *Backend) Strategy() Strategy { return b.strategy }

// SetStrategy switches strategy. Requests already sent remotely are
// still answered if the connection stays up.
func (b *Backend) SetStrategy(strategy Strategy) {
	if strategy != b.strategy {
		b.logger.Info("rpc strategy changed", "from", b.strategy, "to", strategy)
	}
	b.strategy = strategy
}

// Connect dials the server for the remote strategy and announces the
// outcome on the notify topic. wake is invoked whenever a response
// arrives.
func (b *Backend) Connect(ctx context.Context, address string, wake func()) error {
	if err := b.remote.Connect(ctx, address, wake); err != nil {
		contract.Publish(b.broker, contract.Notify{Text: fmt.Sprintf("Failed to connect to %s.", address)})
		return err
	}
	b.wasConnected = true
	contract.Publish(b.broker, contract.Notify{Text: fmt.Sprintf("Connected to %s.", address)})
	return nil
}

// Connected reports whether the remote client has a connection.
func (b *Backend) Connected() bool {
	return b.remote.State() == rpc.Connected
}

// Update drains pending commands, routes them, and publishes whatever
// responses have arrived from the server.
func (b *Backend) Update() {
	for _, message := range b.mailbox.Drain() {
		switch message := message.(type) {
		case contract.RPCCommand:
			b.route(message)
		case contract.RPCResult, contract.FileCommand, contract.FileResult, contract.Notify:
			b.logger.Debug("ignoring message on rpc/command", "topic", message.Topic())
		}
	}

	for {
		response, ok := b.remote.Receive()
		if !ok {
			break
		}
		b.publish(response.ID, response.Result)
	}

	if b.wasConnected && !b.Connected() {
		b.wasConnected = false
		contract.Publish(b.broker, contract.Notify{Text: "Disconnected from the backend server."})
	}
}

func (b *Backend) route(command contract.RPCCommand) {
	switch b.strategy {
	case Local:
		b.logger.Debug("executing rpc command locally", "id", command.ID)
		b.publish(command.ID, b.local.Execute(command.ID, command.Command))
	case Remote:
		if !b.Connected() {
			b.logger.Warn("remote strategy without connection", "id", command.ID)
			b.publish(command.ID, rpc.Failure(rpc.ConnectionError()))
			return
		}
		b.remote.Send(command.ID, command.Command)
	default:
		b.logger.Error("unknown rpc strategy", "strategy", b.strategy, "id", command.ID)
		b.publish(command.ID, rpc.Failure(rpc.UnrecognizedMessageError()))
	}
}

func (b *Backend) publish(id string, result rpc.Result) {
	contract.Publish(b.broker, contract.RPCResult{ID: id, Result: result})
}

// Close unsubscribes, releases the mailbox, and drops any connection.
func (b *Backend) Close() error {
	// The topic may already be gone if this was its last subscriber
	// and the mailbox was pruned; either way nothing is left to do.
	_ = b.broker.Unsubscribe(contract.TopicRPCCommand, b.mailbox.ID())
	b.mailbox.Close()
	return b.remote.Close()
}
