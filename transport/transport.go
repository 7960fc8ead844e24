// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"syscall"
	"time"
)

// MaxFrameSize bounds a single frame in either direction.
const MaxFrameSize = 16 << 20

var (
	// ErrClosed marks a read or write on a finished connection.
	ErrClosed = errors.New("transport: connection closed")

	// ErrFrameTooLarge is returned for frames over MaxFrameSize.
	ErrFrameTooLarge = errors.New("transport: frame exceeds size limit")
)

// Conn is a bidirectional, message-oriented connection. ReadFrame must
// be called from one goroutine at a time; WriteFrame and Close are
// safe for concurrent use.
type Conn interface {
	// ReadFrame blocks until a complete frame arrives.
	ReadFrame() ([]byte, error)

	// WriteFrame sends frame as one unit.
	WriteFrame(frame []byte) error

	// Close tears the connection down and unblocks ReadFrame.
	Close() error

	// RemoteAddress identifies the peer for logging.
	RemoteAddress() string
}

// Listener accepts inbound connections.
type Listener interface {
	// Accept blocks until a connection arrives, ctx is cancelled, or
	// the listener is closed. A closed listener returns ErrClosed.
	Accept(ctx context.Context) (Conn, error)

	// Address returns the URL clients should dial, with the actual
	// port when the listener was opened on port 0.
	Address() string

	Close() error
}

type dialOptions struct {
	header  http.Header
	timeout time.Duration
}

// DialOption configures Dial.
type DialOption func(*dialOptions)

// WithHeader adds HTTP headers to the WebSocket handshake. Ignored by
// tcp://.
func WithHeader(header http.Header) DialOption {
	return func(o *dialOptions) { o.header = header }
}

// WithDialTimeout bounds connection establishment in addition to the
// context deadline.
func WithDialTimeout(timeout time.Duration) DialOption {
	return func(o *dialOptions) { o.timeout = timeout }
}

type listenOptions struct {
	handlers map[string]http.Handler
}

// ListenOption configures Listen.
type ListenOption func(*listenOptions)

// WithHandler mounts handler at pattern on a ws:// listener's HTTP
// server. Ignored by tcp://.
func WithHandler(pattern string, handler http.Handler) ListenOption {
	return func(o *listenOptions) {
		if o.handlers == nil {
			o.handlers = make(map[string]http.Handler)
		}
		o.handlers[pattern] = handler
	}
}

type dialFunc func(ctx context.Context, address *url.URL, o *dialOptions) (Conn, error)
type listenFunc func(address *url.URL, o *listenOptions) (Listener, error)

var (
	schemesMu sync.RWMutex
	schemes   = map[string]struct {
		dial   dialFunc
		listen listenFunc
	}{
		"ws":  {dialWebSocket, listenWebSocket},
		"tcp": {dialTCP, listenTCP},
	}
)

// Schemes returns the supported URL schemes, sorted.
func Schemes() []string {
	schemesMu.RLock()
	defer schemesMu.RUnlock()
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(address string) (*url.URL, dialFunc, listenFunc, error) {
	parsed, err := url.Parse(address)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parsing address %q: %w", address, err)
	}
	if parsed.Host == "" {
		return nil, nil, nil, fmt.Errorf("address %q has no host", address)
	}
	schemesMu.RLock()
	entry, ok := schemes[parsed.Scheme]
	schemesMu.RUnlock()
	if !ok {
		return nil, nil, nil, fmt.Errorf("unsupported transport scheme %q", parsed.Scheme)
	}
	return parsed, entry.dial, entry.listen, nil
}

// Dial connects to address.
func Dial(ctx context.Context, address string, options ...DialOption) (Conn, error) {
	o := &dialOptions{}
	for _, option := range options {
		option(o)
	}
	parsed, dial, _, err := lookup(address)
	if err != nil {
		return nil, err
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	conn, err := dial(ctx, parsed, o)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", address, err)
	}
	return conn, nil
}

// Listen opens a listener on address.
func Listen(address string, options ...ListenOption) (Listener, error) {
	o := &listenOptions{}
	for _, option := range options {
		option(o)
	}
	parsed, _, listen, err := lookup(address)
	if err != nil {
		return nil, err
	}
	listener, err := listen(parsed, o)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", address, err)
	}
	return listener, nil
}

// isClosedError reports whether err means the connection cannot carry
// further frames.
func isClosedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}

// closed wraps err so errors.Is(err, ErrClosed) holds while the cause
// stays visible.
func closed(err error) error {
	if errors.Is(err, ErrClosed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrClosed, err)
}

// acceptQueue hands connections from a background accept loop to
// Accept callers.
type acceptQueue struct {
	conns     chan Conn
	done      chan struct{}
	closeOnce sync.Once
}

func newAcceptQueue() *acceptQueue {
	return &acceptQueue{
		conns: make(chan Conn),
		done:  make(chan struct{}),
	}
}

func (q *acceptQueue) accept(ctx context.Context) (Conn, error) {
	select {
	case conn := <-q.conns:
		return conn, nil
	case <-q.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// offer delivers conn to an Accept caller, or closes it if the
// listener shuts down first.
func (q *acceptQueue) offer(conn Conn) {
	select {
	case q.conns <- conn:
	case <-q.done:
		conn.Close()
	}
}

func (q *acceptQueue) shutdown() {
	q.closeOnce.Do(func() { close(q.done) })
}
