// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/courier-editor/courier/transport"
)

// Bridge forwards frames from connections accepted on ListenAddress to
// a fresh connection to TargetAddress.
type Bridge struct {
	// ListenAddress is the transport URL to listen on (e.g.
	// "tcp://127.0.0.1:9001").
	ListenAddress string

	// TargetAddress is the transport URL every accepted connection is
	// relayed to (e.g. "ws://127.0.0.1:9000/rpc").
	TargetAddress string

	// DialOptions are passed to transport.Dial for the target.
	DialOptions []transport.DialOption

	// Logger receives structured log output. Per-connection events
	// are logged at Debug level.
	Logger *slog.Logger

	listener transport.Listener
	cancel   context.CancelFunc
	done     chan struct{}
	relays   sync.WaitGroup
}

// Start binds the listener and begins relaying in the background. It
// returns an error if the target cannot be reached or the listener
// cannot be bound. The bridge runs until Stop is called or ctx is
// cancelled.
func (b *Bridge) Start(ctx context.Context) error {
	if b.ListenAddress == "" {
		return fmt.Errorf("bridge: ListenAddress is required")
	}
	if b.TargetAddress == "" {
		return fmt.Errorf("bridge: TargetAddress is required")
	}
	if b.Logger == nil {
		return fmt.Errorf("bridge: Logger is required")
	}

	probe, err := transport.Dial(ctx, b.TargetAddress, b.DialOptions...)
	if err != nil {
		return fmt.Errorf("bridge: target %s not reachable: %w", b.TargetAddress, err)
	}
	probe.Close()

	listener, err := transport.Listen(b.ListenAddress)
	if err != nil {
		return fmt.Errorf("bridge: listening on %s: %w", b.ListenAddress, err)
	}
	b.listener = listener

	ctx, b.cancel = context.WithCancel(ctx)
	b.done = make(chan struct{})
	go func() {
		defer close(b.done)
		b.acceptLoop(ctx)
	}()

	b.Logger.Info("bridge started",
		"listen_address", listener.Address(),
		"target_address", b.TargetAddress,
	)
	return nil
}

// Address returns the URL clients should dial, or "" before Start.
func (b *Bridge) Address() string {
	if b.listener == nil {
		return ""
	}
	return b.listener.Address()
}

// Stop closes the listener and every relayed connection, then waits
// for the relays to drain.
func (b *Bridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	if b.listener != nil {
		b.listener.Close()
	}
	b.Wait()
}

// Wait blocks until the bridge has stopped.
func (b *Bridge) Wait() {
	if b.done != nil {
		<-b.done
	}
}

func (b *Bridge) acceptLoop(ctx context.Context) {
	var connectionCount int64
	for {
		conn, err := b.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, transport.ErrClosed) {
				b.Logger.Error("accept failed", "error", err)
			}
			b.relays.Wait()
			return
		}

		connectionCount++
		logger := b.Logger.With("connection_id", connectionCount)
		b.relays.Add(1)
		go func() {
			defer b.relays.Done()
			b.relay(ctx, conn, logger)
		}()
	}
}

// relay copies frames both ways until either side closes or ctx is
// cancelled, then closes both connections.
func (b *Bridge) relay(ctx context.Context, client transport.Conn, logger *slog.Logger) {
	defer client.Close()
	logger.Debug("connection accepted", "remote_address", client.RemoteAddress())

	target, err := transport.Dial(ctx, b.TargetAddress, b.DialOptions...)
	if err != nil {
		logger.Error("failed to connect to target", "target_address", b.TargetAddress, "error", err)
		return
	}
	defer target.Close()

	stop := context.AfterFunc(ctx, func() {
		client.Close()
		target.Close()
	})
	defer stop()

	var upstream, downstream atomic.Int64
	var directions sync.WaitGroup
	directions.Add(2)
	go func() {
		defer directions.Done()
		copyFrames(target, client, &upstream, logger.With("direction", "upstream"))
		target.Close()
	}()
	go func() {
		defer directions.Done()
		copyFrames(client, target, &downstream, logger.With("direction", "downstream"))
		client.Close()
	}()
	directions.Wait()

	logger.Debug("connection closed",
		"frames_upstream", upstream.Load(),
		"frames_downstream", downstream.Load(),
	)
}

// copyFrames moves frames from src to dst until a read or write fails.
// An oversize frame the transport skipped drops that frame only.
func copyFrames(dst, src transport.Conn, count *atomic.Int64, logger *slog.Logger) {
	for {
		frame, err := src.ReadFrame()
		if err != nil {
			if errors.Is(err, transport.ErrFrameTooLarge) && !errors.Is(err, transport.ErrClosed) {
				logger.Warn("frame dropped", "error", err)
				continue
			}
			if !errors.Is(err, transport.ErrClosed) {
				logger.Warn("relay read failed", "error", err)
			}
			return
		}
		if err := dst.WriteFrame(frame); err != nil {
			if !errors.Is(err, transport.ErrClosed) {
				logger.Debug("write failed", "error", err)
			}
			return
		}
		count.Add(1)
	}
}
