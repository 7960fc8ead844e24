// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"fmt"

	"github.com/courier-editor/courier/lib/codec"
)

// variant is the wire form of a tagged value. Body is absent for
// variants without fields.
type variant struct {
	Kind string           `cbor:"kind"`
	Body codec.RawMessage `cbor:"body,omitempty"`
}

func encodeVariant(kind string, body any) (variant, error) {
	if body == nil {
		return variant{Kind: kind}, nil
	}
	data, err := codec.Marshal(body)
	if err != nil {
		return variant{}, fmt.Errorf("encoding %s body: %w", kind, err)
	}
	return variant{Kind: kind, Body: data}, nil
}

func decodeBody[T any](v variant) (T, error) {
	var body T
	if len(v.Body) == 0 {
		return body, fmt.Errorf("%s: missing body", v.Kind)
	}
	if err := codec.Unmarshal(v.Body, &body); err != nil {
		return body, fmt.Errorf("decoding %s body: %w", v.Kind, err)
	}
	return body, nil
}
