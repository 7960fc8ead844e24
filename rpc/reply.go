// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import "fmt"

// ReplyKind names a Reply variant on the wire.
type ReplyKind string

const (
	ReplyEmpty            ReplyKind = "empty"
	ReplyEcho             ReplyKind = "echo"
	ReplyClientID         ReplyKind = "client_id"
	ReplyConnectionStatus ReplyKind = "connection_status"
)

// Reply is the payload of a successful Result. The set of
// implementations is closed.
type Reply interface {
	Kind() ReplyKind
	reply()
}

// Empty is the reply for commands with nothing to report.
type Empty struct{}

// EchoReply returns the text of an Echo command.
type EchoReply struct {
	Text string `cbor:"text"`
}

// ClientID reports the correlation id of the request.
type ClientID struct {
	ID string `cbor:"id"`
}

// ConnectionStatus reports reachability.
type ConnectionStatus struct {
	Connected bool `cbor:"connected"`
}

func (Empty) Kind() ReplyKind            { return ReplyEmpty }
func (EchoReply) Kind() ReplyKind        { return ReplyEcho }
func (ClientID) Kind() ReplyKind         { return ReplyClientID }
func (ConnectionStatus) Kind() ReplyKind { return ReplyConnectionStatus }

func (Empty) reply()            {}
func (EchoReply) reply()        {}
func (ClientID) reply()         {}
func (ConnectionStatus) reply() {}

func encodeReply(r Reply) (variant, error) {
	switch r := r.(type) {
	case Empty:
		return encodeVariant(string(r.Kind()), nil)
	case EchoReply, ClientID, ConnectionStatus:
		return encodeVariant(string(r.Kind()), r)
	case nil:
		return variant{}, fmt.Errorf("nil reply")
	default:
		return variant{}, fmt.Errorf("unsupported reply type %T", r)
	}
}

func decodeReply(v variant) (Reply, error) {
	switch ReplyKind(v.Kind) {
	case ReplyEmpty:
		return Empty{}, nil
	case ReplyEcho:
		return decodeBody[EchoReply](v)
	case ReplyClientID:
		return decodeBody[ClientID](v)
	case ReplyConnectionStatus:
		return decodeBody[ConnectionStatus](v)
	default:
		return nil, fmt.Errorf("unknown reply kind %q", v.Kind)
	}
}
