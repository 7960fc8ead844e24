// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"sync"

	"github.com/courier-editor/courier/transport"
)

type readResult struct {
	frame []byte
	err   error
}

// scriptedConn is a transport.Conn whose reads are fed by the test and
// whose writes are captured.
type scriptedConn struct {
	reads  chan readResult
	writes chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newScriptedConn() *scriptedConn {
	return &scriptedConn{
		reads:  make(chan readResult),
		writes: make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *scriptedConn) ReadFrame() ([]byte, error) {
	select {
	case r := <-c.reads:
		return r.frame, r.err
	case <-c.closed:
		return nil, transport.ErrClosed
	}
}

func (c *scriptedConn) WriteFrame(frame []byte) error {
	select {
	case <-c.closed:
		return transport.ErrClosed
	default:
	}
	c.writes <- frame
	return nil
}

func (c *scriptedConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *scriptedConn) RemoteAddress() string { return "scripted" }

// queueListener hands out connections pushed by the test.
type queueListener struct {
	conns     chan transport.Conn
	closeOnce sync.Once
	done      chan struct{}
}

func newQueueListener() *queueListener {
	return &queueListener{conns: make(chan transport.Conn, 4), done: make(chan struct{})}
}

func (l *queueListener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case conn := <-l.conns:
		return conn, nil
	case <-l.done:
		return nil, transport.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *queueListener) Address() string { return "queue://test" }

func (l *queueListener) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}
