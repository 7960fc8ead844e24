// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

// Client is the interface shared by the local and remote strategies.
// Both are driven from a single goroutine, normally the host loop.
type Client interface {
	// Send submits command under the correlation id. It does not
	// block and does not report failure: problems are logged and the
	// request is dropped.
	Send(id string, command Command)

	// Receive returns at most one pending response.
	Receive() (Response, bool)
}

var (
	_ Client = (*LocalClient)(nil)
	_ Client = (*RemoteClient)(nil)
)
