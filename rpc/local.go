// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

// LocalClient executes commands in-process. There is no serialization
// and no network.
type LocalClient struct {
	executor *Executor
	pending  []Response
}

// NewLocalClient wraps executor.
func NewLocalClient(executor *Executor) *LocalClient {
	return &LocalClient{executor: executor}
}

// Execute runs command immediately and returns its result.
func (c *LocalClient) Execute(id string, command Command) Result {
	return c.executor.Execute(id, command)
}

// Send executes command and queues the response for Receive.
func (c *LocalClient) Send(id string, command Command) {
	c.pending = append(c.pending, Response{ID: id, Result: c.Execute(id, command)})
}

// Receive returns the oldest queued response.
func (c *LocalClient) Receive() (Response, bool) {
	if len(c.pending) == 0 {
		return Response{}, false
	}
	response := c.pending[0]
	c.pending[0] = Response{}
	c.pending = c.pending[1:]
	return response, true
}
