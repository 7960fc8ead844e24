// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"
	"time"
)

// Compile-time interface checks.
var (
	_ Conn     = (*tcpConn)(nil)
	_ Listener = (*tcpListener)(nil)
)

// tcpConn frames a stream connection with a 4-byte big-endian length
// prefix.
type tcpConn struct {
	conn   net.Conn
	reader *bufio.Reader

	writeMu sync.Mutex
}

func newTCPConn(conn net.Conn) *tcpConn {
	return &tcpConn{conn: conn, reader: bufio.NewReader(conn)}
}

// ReadFrame returns the next frame. An oversize frame is skipped and
// reported as ErrFrameTooLarge with the stream still aligned. Any
// failure once a frame has started leaves the stream misaligned, so it
// is reported as ErrClosed whatever the cause.
func (c *tcpConn) ReadFrame() ([]byte, error) {
	var header [4]byte
	if n, err := io.ReadFull(c.reader, header[:]); err != nil {
		if n > 0 {
			return nil, closed(err)
		}
		return nil, c.readError(err)
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxFrameSize {
		if _, err := io.CopyN(io.Discard, c.reader, int64(size)); err != nil {
			return nil, closed(err)
		}
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}
	frame := make([]byte, size)
	if _, err := io.ReadFull(c.reader, frame); err != nil {
		return nil, closed(err)
	}
	return frame, nil
}

func (c *tcpConn) readError(err error) error {
	if isClosedError(err) {
		return closed(err)
	}
	return err
}

func (c *tcpConn) WriteFrame(frame []byte) error {
	if len(frame) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(frame))
	}
	buffer := make([]byte, 4+len(frame))
	binary.BigEndian.PutUint32(buffer, uint32(len(frame)))
	copy(buffer[4:], frame)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(buffer); err != nil {
		if isClosedError(err) {
			return closed(err)
		}
		return err
	}
	return nil
}

func (c *tcpConn) Close() error { return c.conn.Close() }

func (c *tcpConn) RemoteAddress() string { return c.conn.RemoteAddr().String() }

func dialTCP(ctx context.Context, address *url.URL, _ *dialOptions) (Conn, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address.Host)
	if err != nil {
		return nil, err
	}
	return newTCPConn(conn), nil
}

// tcpListener runs net.Listener.Accept in the background so Accept can
// honor its context.
type tcpListener struct {
	listener net.Listener
	queue    *acceptQueue
}

func listenTCP(address *url.URL, _ *listenOptions) (Listener, error) {
	listener, err := net.Listen("tcp", address.Host)
	if err != nil {
		return nil, err
	}
	l := &tcpListener{listener: listener, queue: newAcceptQueue()}
	go l.acceptLoop()
	return l, nil
}

// Accept backoff bounds, as in net/http.Server.
const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

func (l *tcpListener) acceptLoop() {
	var backoff time.Duration
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				l.queue.shutdown()
				return
			}
			// Typically EMFILE or ECONNABORTED.
			backoff = nextAcceptBackoff(backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		l.queue.offer(newTCPConn(conn))
	}
}

func nextAcceptBackoff(previous time.Duration) time.Duration {
	if previous == 0 {
		return minAcceptBackoff
	}
	return min(previous*2, maxAcceptBackoff)
}

func (l *tcpListener) Accept(ctx context.Context) (Conn, error) {
	return l.queue.accept(ctx)
}

func (l *tcpListener) Address() string {
	return "tcp://" + l.listener.Addr().String()
}

func (l *tcpListener) Close() error {
	l.queue.shutdown()
	return l.listener.Close()
}
