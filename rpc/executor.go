// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import "log/slog"

// Executor runs commands. It holds no state, so one instance may be
// shared by every connection of a Server.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor returns an Executor that logs each command at debug
// level.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute returns the result of command for the request id. It never
// fails to produce a Result: a nil or unknown command yields an
// UnrecognizedMessage failure.
func (e *Executor) Execute(id string, command Command) Result {
	e.logger.Debug("executing rpc command", "id", id, "command", commandKind(command))

	switch command := command.(type) {
	case Example:
		return Success(Empty{})
	case Echo:
		return Success(EchoReply{Text: command.Text})
	case Identify:
		return Success(ClientID{ID: id})
	case Status:
		return Success(ConnectionStatus{Connected: true})
	default:
		e.logger.Warn("unrecognized rpc command", "id", id, "type", commandKind(command))
		return Failure(UnrecognizedMessageError())
	}
}

func commandKind(command Command) string {
	if command == nil {
		return "<nil>"
	}
	return string(command.Kind())
}
