// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/courier-editor/courier/lib/version"
	"github.com/courier-editor/courier/transport"
)

// State is the connection state of a RemoteClient.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

const (
	defaultOutboundQueue = 64
	defaultEventQueue    = 64
)

// RemoteOption configures a RemoteClient.
type RemoteOption func(*RemoteClient)

// WithOutboundQueue sets how many encoded requests may wait for the
// writer goroutine before Send starts dropping.
func WithOutboundQueue(size int) RemoteOption {
	return func(c *RemoteClient) {
		if size > 0 {
			c.outboundSize = size
		}
	}
}

// WithDialOptions passes options through to transport.Dial.
func WithDialOptions(options ...transport.DialOption) RemoteOption {
	return func(c *RemoteClient) { c.dialOptions = append(c.dialOptions, options...) }
}

// RemoteClient sends commands to a Server over a transport connection.
//
// Connect, Send, Receive and Close belong to the owner goroutine. A
// reader goroutine and a writer goroutine run per connection; they
// talk to the owner only through channels, and the reader calls the
// wake function after every inbound event so the owner knows to call
// Receive.
type RemoteClient struct {
	logger       *slog.Logger
	dialOptions  []transport.DialOption
	outboundSize int

	state   atomic.Int32
	session *session
}

// event is one inbound frame or the error that ended the connection.
type event struct {
	frame []byte
	err   error
}

type session struct {
	conn     transport.Conn
	events   chan event
	outbound chan []byte
	done     chan struct{}
	wake     func()
	workers  sync.WaitGroup
}

// NewRemoteClient returns a disconnected client.
func NewRemoteClient(logger *slog.Logger, options ...RemoteOption) *RemoteClient {
	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	c := &RemoteClient{
		logger:       logger,
		dialOptions:  []transport.DialOption{transport.WithHeader(header)},
		outboundSize: defaultOutboundQueue,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// State returns the current connection state. Safe to call from any
// goroutine.
func (c *RemoteClient) State() State { return State(c.state.Load()) }

// Connect dials address. On failure the client is left Disconnected
// and the error is returned; there is no automatic retry. wake may be
// nil.
func (c *RemoteClient) Connect(ctx context.Context, address string, wake func()) error {
	if state := c.State(); state != Disconnected {
		return fmt.Errorf("connect %s: client is %s", address, state)
	}
	if wake == nil {
		wake = func() {}
	}

	c.state.Store(int32(Connecting))
	conn, err := transport.Dial(ctx, address, c.dialOptions...)
	if err != nil {
		c.state.Store(int32(Disconnected))
		c.logger.Error("rpc client connection failed", "address", address, "error", err)
		return err
	}

	s := &session{
		conn:     conn,
		events:   make(chan event, defaultEventQueue),
		outbound: make(chan []byte, c.outboundSize),
		done:     make(chan struct{}),
		wake:     wake,
	}
	s.workers.Add(2)
	go s.readLoop()
	go s.writeLoop()

	c.session = s
	c.state.Store(int32(Connected))
	c.logger.Info("rpc client connected", "address", address)
	return nil
}

// Send encodes a request and queues it for the writer. When the client
// is not connected, encoding fails, or the queue is full, the request
// is logged and dropped.
func (c *RemoteClient) Send(id string, command Command) {
	if c.State() != Connected {
		c.logger.Warn("rpc client not connected, dropping request", "id", id)
		return
	}
	frame, err := EncodeRequest(Request{ID: id, Command: command})
	if err != nil {
		c.logger.Error("rpc request encoding failed", "id", id, "error", err)
		return
	}
	select {
	case c.session.outbound <- frame:
	default:
		c.logger.Warn("rpc outbound queue full, dropping request", "id", id)
	}
}

// Receive returns the next decoded response, if one has arrived. A
// transport error disconnects the client. A frame that fails to decode
// is logged and dropped, and Receive returns false for that call.
func (c *RemoteClient) Receive() (Response, bool) {
	if c.session == nil {
		return Response{}, false
	}
	select {
	case ev := <-c.session.events:
		if ev.err != nil {
			if errors.Is(ev.err, transport.ErrClosed) {
				c.logger.Info("rpc connection closed", "error", ev.err)
			} else {
				c.logger.Error("rpc connection failed", "error", ev.err)
			}
			c.disconnect()
			return Response{}, false
		}
		response, err := DecodeResponse(ev.frame)
		if err != nil {
			c.logger.Error("rpc response dropped", "error", err, "bytes", len(ev.frame))
			return Response{}, false
		}
		c.logger.Debug("rpc response received", "id", response.ID, "ok", response.Result.OK())
		return response, true
	default:
		return Response{}, false
	}
}

// Close tears down the connection, if any, and waits for the
// goroutines to exit. The client can Connect again afterwards.
func (c *RemoteClient) Close() error {
	if c.session == nil {
		return nil
	}
	return c.disconnect()
}

func (c *RemoteClient) disconnect() error {
	s := c.session
	c.session = nil
	c.state.Store(int32(Disconnected))

	close(s.done)
	err := s.conn.Close()
	s.workers.Wait()
	return err
}

func (s *session) deliver(ev event) bool {
	select {
	case s.events <- ev:
		s.wake()
		return true
	case <-s.done:
		return false
	}
}

func (s *session) readLoop() {
	defer s.workers.Done()
	for {
		frame, err := s.conn.ReadFrame()
		if err != nil {
			select {
			case <-s.done:
				// Closed by the owner; nobody is listening.
			default:
				s.deliver(event{err: err})
			}
			return
		}
		if !s.deliver(event{frame: frame}) {
			return
		}
	}
}

func (s *session) writeLoop() {
	defer s.workers.Done()
	for {
		select {
		case frame := <-s.outbound:
			if err := s.conn.WriteFrame(frame); err != nil {
				s.deliver(event{err: fmt.Errorf("writing request: %w", err)})
				return
			}
		case <-s.done:
			return
		}
	}
}
