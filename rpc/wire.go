// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"errors"
	"fmt"

	"github.com/courier-editor/courier/lib/codec"
)

// Request is the frame a remote client sends.
type Request struct {
	ID      string
	Command Command
}

// Response is the frame the server returns, tagged with the request's
// ID.
type Response struct {
	ID     string `cbor:"id"`
	Result Result `cbor:"result"`
}

type requestWire struct {
	ID      string  `cbor:"id"`
	Command variant `cbor:"command"`
}

// MarshalCBOR implements cbor.Marshaler.
func (r Request) MarshalCBOR() ([]byte, error) {
	command, err := encodeCommand(r.Command)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(requestWire{ID: r.ID, Command: command})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (r *Request) UnmarshalCBOR(data []byte) error {
	var wire requestWire
	if err := codec.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Command.Kind == "" {
		return errors.New("request without command")
	}
	command, err := decodeCommand(wire.Command)
	if err != nil {
		return err
	}
	*r = Request{ID: wire.ID, Command: command}
	return nil
}

// EncodeRequest returns the frame for request.
func EncodeRequest(request Request) ([]byte, error) {
	data, err := codec.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encoding request %s: %w", request.ID, err)
	}
	return data, nil
}

// DecodeRequest parses a request frame.
func DecodeRequest(frame []byte) (Request, error) {
	var request Request
	if err := codec.Unmarshal(frame, &request); err != nil {
		return Request{}, fmt.Errorf("decoding request: %w", err)
	}
	return request, nil
}

// EncodeResponse returns the frame for response.
func EncodeResponse(response Response) ([]byte, error) {
	data, err := codec.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("encoding response %s: %w", response.ID, err)
	}
	return data, nil
}

// DecodeResponse parses a response frame.
func DecodeResponse(frame []byte) (Response, error) {
	var response Response
	if err := codec.Unmarshal(frame, &response); err != nil {
		return Response{}, fmt.Errorf("decoding response: %w", err)
	}
	return response, nil
}
