// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/courier-editor/courier/lib/clock"
	"github.com/courier-editor/courier/transport"
)

// DefaultRetryInterval is how long a connection task waits after a
// transient read failure before reading again.
const DefaultRetryInterval = time.Second

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithClock replaces the real clock, for tests.
func WithClock(c clock.Clock) ServerOption {
	return func(s *Server) { s.clock = c }
}

// WithRetryInterval overrides DefaultRetryInterval.
func WithRetryInterval(interval time.Duration) ServerOption {
	return func(s *Server) {
		if interval > 0 {
			s.retryInterval = interval
		}
	}
}

// WithMetrics records server activity in metrics.
func WithMetrics(metrics *ServerMetrics) ServerOption {
	return func(s *Server) { s.metrics = metrics }
}

// WithExecutor replaces the default executor.
func WithExecutor(executor *Executor) ServerOption {
	return func(s *Server) { s.executor = executor }
}

// Server answers Request frames on every connection a listener
// accepts. Each connection is served by its own goroutine, strictly
// one request at a time.
type Server struct {
	listener      transport.Listener
	executor      *Executor
	logger        *slog.Logger
	clock         clock.Clock
	retryInterval time.Duration
	metrics       *ServerMetrics

	mu          sync.Mutex
	connections map[transport.Conn]struct{}

	// active tracks connection goroutines; Serve waits for them.
	active sync.WaitGroup
}

// NewServer returns a server for listener. Metrics are recorded in a
// fresh ServerMetrics unless WithMetrics supplies one.
func NewServer(listener transport.Listener, logger *slog.Logger, options ...ServerOption) *Server {
	s := &Server{
		listener:      listener,
		logger:        logger,
		clock:         clock.Real(),
		retryInterval: DefaultRetryInterval,
		connections:   make(map[transport.Conn]struct{}),
	}
	for _, option := range options {
		option(s)
	}
	if s.executor == nil {
		s.executor = NewExecutor(logger)
	}
	if s.metrics == nil {
		s.metrics = NewServerMetrics()
	}
	return s
}

// Metrics returns the server's counters.
func (s *Server) Metrics() *ServerMetrics { return s.metrics }

// Serve accepts connections until ctx is cancelled or Accept fails.
// Either way every open connection is closed, and Serve returns after
// all connection goroutines have exited. Cancellation returns nil. An
// Accept failure while ctx is live, including a listener closed out
// from under the server, is returned.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.listener.Close()
		s.closeConnections()
	})
	defer stop()

	s.logger.Info("rpc server listening", "address", s.listener.Address())

	var serveErr error
	for {
		conn, err := s.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() == nil {
				serveErr = fmt.Errorf("accepting on %s: %w", s.listener.Address(), err)
				s.logger.Error("rpc server stopped accepting", "error", err)
				s.listener.Close()
				s.closeConnections()
			}
			break
		}

		if !s.track(conn) {
			// Cancelled between Accept and track.
			conn.Close()
			break
		}
		s.metrics.Connections.Inc()
		s.active.Add(1)
		go func() {
			defer s.active.Done()
			defer s.untrack(conn)
			s.handleConnection(ctx, conn)
		}()
	}

	s.active.Wait()
	return serveErr
}

func (s *Server) track(conn transport.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connections == nil {
		return false
	}
	s.connections[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn transport.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, conn)
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	connections := s.connections
	s.connections = nil
	s.mu.Unlock()

	for conn := range connections {
		conn.Close()
	}
}

// handleConnection serves one connection until the peer closes it or
// ctx is cancelled.
func (s *Server) handleConnection(ctx context.Context, conn transport.Conn) {
	defer conn.Close()

	logger := s.logger.With("remote", conn.RemoteAddress())
	logger.Debug("rpc connection opened")

	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, transport.ErrClosed) {
				logger.Debug("rpc connection closed", "error", err)
				return
			}
			logger.Warn("rpc read failed, retrying", "error", err, "retry_in", s.retryInterval)
			s.metrics.ReadRetries.Inc()
			select {
			case <-s.clock.After(s.retryInterval):
				continue
			case <-ctx.Done():
				return
			}
		}
		s.metrics.FramesReceived.Inc()

		request, err := DecodeRequest(frame)
		if err != nil {
			logger.Debug("rpc request dropped", "error", err, "bytes", len(frame))
			s.metrics.FramesDropped.WithLabelValues(DropDecode).Inc()
			continue
		}

		result := s.executor.Execute(request.ID, request.Command)

		data, err := EncodeResponse(Response{ID: request.ID, Result: result})
		if err != nil {
			logger.Error("rpc response encoding failed", "id", request.ID, "error", err)
			s.metrics.FramesDropped.WithLabelValues(DropEncode).Inc()
			continue
		}
		if err := conn.WriteFrame(data); err != nil {
			s.metrics.FramesDropped.WithLabelValues(DropWrite).Inc()
			if errors.Is(err, transport.ErrClosed) {
				logger.Debug("rpc connection closed while writing", "id", request.ID)
				return
			}
			logger.Error("rpc response write failed", "id", request.ID, "error", err)
			continue
		}
		s.metrics.ResponsesSent.Inc()
	}
}
