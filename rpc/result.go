// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"errors"
	"fmt"

	"github.com/courier-editor/courier/lib/codec"
)

// Result is the outcome of executing a Command: exactly one of Reply
// and Err is set.
type Result struct {
	Reply Reply
	Err   *Error
}

// Success wraps reply. A nil reply becomes Empty.
func Success(reply Reply) Result {
	if reply == nil {
		reply = Empty{}
	}
	return Result{Reply: reply}
}

// Failure wraps err.
func Failure(err *Error) Result {
	return Result{Err: err}
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return r.Err == nil }

// Clone returns a copy that shares no pointers with r.
func (r Result) Clone() Result {
	if r.Err != nil {
		err := *r.Err
		return Result{Err: &err}
	}
	return r
}

func (r Result) String() string {
	if r.Err != nil {
		return "failure: " + r.Err.Error()
	}
	return fmt.Sprintf("success: %s %+v", r.Reply.Kind(), r.Reply)
}

type resultWire struct {
	OK    bool     `cbor:"ok"`
	Reply *variant `cbor:"reply,omitempty"`
	Error *Error   `cbor:"error,omitempty"`
}

// MarshalCBOR implements cbor.Marshaler.
func (r Result) MarshalCBOR() ([]byte, error) {
	wire := resultWire{OK: r.OK()}
	if r.Err != nil {
		wire.Error = r.Err
	} else {
		reply := r.Reply
		if reply == nil {
			reply = Empty{}
		}
		encoded, err := encodeReply(reply)
		if err != nil {
			return nil, err
		}
		wire.Reply = &encoded
	}
	return codec.Marshal(wire)
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (r *Result) UnmarshalCBOR(data []byte) error {
	var wire resultWire
	if err := codec.Unmarshal(data, &wire); err != nil {
		return err
	}
	if !wire.OK {
		if wire.Error == nil {
			return errors.New("failed result without error")
		}
		*r = Failure(wire.Error)
		return nil
	}
	if wire.Reply == nil {
		return errors.New("successful result without reply")
	}
	reply, err := decodeReply(*wire.Reply)
	if err != nil {
		return err
	}
	*r = Success(reply)
	return nil
}
