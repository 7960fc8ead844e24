// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import "fmt"

// ErrorKind classifies a failed Result.
type ErrorKind string

const (
	ErrorTimeout               ErrorKind = "timeout"
	ErrorUnknownClientID       ErrorKind = "unknown_client_id"
	ErrorUnknownSpawnerID      ErrorKind = "unknown_spawner_id"
	ErrorUnknownSpawnerApp     ErrorKind = "unknown_spawner_app"
	ErrorConnection            ErrorKind = "connection"
	ErrorSpawner               ErrorKind = "spawner"
	ErrorResultDeserialization ErrorKind = "result_deserialization"
	ErrorUnrecognizedMessage   ErrorKind = "unrecognized_message"
	ErrorCommandSerialization  ErrorKind = "command_serialization"
	ErrorSubscription          ErrorKind = "subscription"
	ErrorPublish               ErrorKind = "publish"
	ErrorPublishJSON           ErrorKind = "publish_json"
	ErrorRequestBridge         ErrorKind = "request_bridge"
	ErrorRemoveBridge          ErrorKind = "remove_bridge"
)

// Error is a structured RPC failure. Which fields are meaningful
// depends on Kind; Error() renders the fixed message for each kind.
type Error struct {
	Kind   ErrorKind `cbor:"kind"`
	ID     string    `cbor:"id,omitempty"`
	Topic  string    `cbor:"topic,omitempty"`
	Detail string    `cbor:"detail,omitempty"`
	Source string    `cbor:"source,omitempty"`
	Target string    `cbor:"target,omitempty"`
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrorTimeout:
		return "the RPC operation timed out"
	case ErrorUnknownClientID:
		return fmt.Sprintf("client %q has not been created yet", e.ID)
	case ErrorUnknownSpawnerID:
		return fmt.Sprintf("spawner %q has not been created yet", e.ID)
	case ErrorUnknownSpawnerApp:
		return fmt.Sprintf("spawner app %q has not been created yet", e.ID)
	case ErrorConnection:
		return "the client failed to connect"
	case ErrorSpawner:
		return fmt.Sprintf("the spawner failed to spawn apps: %s", e.Detail)
	case ErrorResultDeserialization:
		return fmt.Sprintf("failed to deserialize a result: %s", e.Detail)
	case ErrorUnrecognizedMessage:
		return "an unexpected message was received"
	case ErrorCommandSerialization:
		return fmt.Sprintf("failed to serialize a command: %s", e.Detail)
	case ErrorSubscription:
		return fmt.Sprintf("subscription to topic %q with client %q failed: %s", e.Topic, e.ID, e.Detail)
	case ErrorPublish:
		return fmt.Sprintf("publishing to topic %q with client %q failed: %s", e.Topic, e.ID, e.Detail)
	case ErrorPublishJSON:
		return fmt.Sprintf("publishing json to topic %q with client %q failed: %s", e.Topic, e.ID, e.Detail)
	case ErrorRequestBridge:
		return fmt.Sprintf("requesting bridge from %q to %q with client %q failed: %s", e.Source, e.Target, e.ID, e.Detail)
	case ErrorRemoveBridge:
		return fmt.Sprintf("removing bridge to %q with client %q failed: %s", e.Target, e.ID, e.Detail)
	default:
		return fmt.Sprintf("rpc error %q", string(e.Kind))
	}
}

// Is matches another *Error of the same Kind, so callers can write
// errors.Is(err, &rpc.Error{Kind: rpc.ErrorConnection}).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Kind == e.Kind
}

// NewError returns an Error of kind with no detail fields.
func NewError(kind ErrorKind) *Error {
	return &Error{Kind: kind}
}

// ConnectionError reports that the remote strategy has no connection.
func ConnectionError() *Error {
	return &Error{Kind: ErrorConnection}
}

// UnrecognizedMessageError reports a command outside the vocabulary.
func UnrecognizedMessageError() *Error {
	return &Error{Kind: ErrorUnrecognizedMessage}
}

// CommandSerializationError wraps an encoding failure.
func CommandSerializationError(err error) *Error {
	return &Error{Kind: ErrorCommandSerialization, Detail: err.Error()}
}

// ResultDeserializationError wraps a decoding failure.
func ResultDeserializationError(err error) *Error {
	return &Error{Kind: ErrorResultDeserialization, Detail: err.Error()}
}

// TimeoutError reports that a caller gave up waiting.
func TimeoutError() *Error {
	return &Error{Kind: ErrorTimeout}
}
