// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import "fmt"

// CommandKind names a Command variant on the wire.
type CommandKind string

const (
	CommandExample  CommandKind = "example"
	CommandEcho     CommandKind = "echo"
	CommandIdentify CommandKind = "identify"
	CommandStatus   CommandKind = "status"
)

// Command is a request the backend can execute. The set of
// implementations is closed.
type Command interface {
	Kind() CommandKind
	command()
}

// Example is the no-op command; it succeeds with Empty.
type Example struct{}

// Echo asks the executor to return Text unchanged.
type Echo struct {
	Text string `cbor:"text"`
}

// Identify asks for the correlation id the executor saw.
type Identify struct{}

// Status asks whether the executor is reachable.
type Status struct{}

func (Example) Kind() CommandKind  { return CommandExample }
func (Echo) Kind() CommandKind     { return CommandEcho }
func (Identify) Kind() CommandKind { return CommandIdentify }
func (Status) Kind() CommandKind   { return CommandStatus }

func (Example) command()  {}
func (Echo) command()     {}
func (Identify) command() {}
func (Status) command()   {}

func encodeCommand(c Command) (variant, error) {
	switch c := c.(type) {
	case Example, Identify, Status:
		return encodeVariant(string(c.Kind()), nil)
	case Echo:
		return encodeVariant(string(c.Kind()), c)
	case nil:
		return variant{}, fmt.Errorf("nil command")
	default:
		return variant{}, fmt.Errorf("unsupported command type %T", c)
	}
}

func decodeCommand(v variant) (Command, error) {
	switch CommandKind(v.Kind) {
	case CommandExample:
		return Example{}, nil
	case CommandEcho:
		return decodeBody[Echo](v)
	case CommandIdentify:
		return Identify{}, nil
	case CommandStatus:
		return Status{}, nil
	default:
		return nil, fmt.Errorf("unknown command kind %q", v.Kind)
	}
}

// ParseCommand builds a command from its kind and an optional text
// argument, for command-line callers.
func ParseCommand(kind string, argument string) (Command, error) {
	switch CommandKind(kind) {
	case CommandExample:
		return Example{}, nil
	case CommandEcho:
		return Echo{Text: argument}, nil
	case CommandIdentify:
		return Identify{}, nil
	case CommandStatus:
		return Status{}, nil
	default:
		return nil, fmt.Errorf("unknown command %q (want example, echo, identify, or status)", kind)
	}
}
