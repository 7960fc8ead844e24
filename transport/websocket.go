// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	_ Conn     = (*webSocketConn)(nil)
	_ Listener = (*webSocketListener)(nil)
)

// closeGrace bounds how long Close waits to send the close frame.
const closeGrace = time.Second

// webSocketConn maps frames onto binary WebSocket messages. gorilla
// allows one concurrent data writer, so WriteFrame holds writeMu.
// WriteControl and Close may run alongside it and do not.
type webSocketConn struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newWebSocketConn(conn *websocket.Conn) *webSocketConn {
	conn.SetReadLimit(MaxFrameSize)
	return &webSocketConn{conn: conn}
}

// ReadFrame returns the next binary message. Text messages are
// skipped. gorilla fails a connection permanently on its first read
// error, so every read error is reported as ErrClosed.
func (c *webSocketConn) ReadFrame() ([]byte, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				return nil, closed(fmt.Errorf("%w: %w", ErrFrameTooLarge, err))
			}
			return nil, closed(err)
		}
		if messageType == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (c *webSocketConn) WriteFrame(frame []byte) error {
	if len(frame) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(frame))
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		if isClosedError(err) || errors.Is(err, websocket.ErrCloseSent) {
			return closed(err)
		}
		return err
	}
	return nil
}

// Close sends a normal-closure frame and closes the socket. A writer
// stuck on a peer that stopped reading holds the frame lock, so the
// close frame gives up after closeGrace and closing the socket
// releases that writer.
func (c *webSocketConn) Close() error {
	c.closeOnce.Do(func() {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(closeGrace))
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *webSocketConn) RemoteAddress() string { return c.conn.RemoteAddr().String() }

func dialWebSocket(ctx context.Context, address *url.URL, o *dialOptions) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, response, err := dialer.DialContext(ctx, address.String(), o.header)
	if response != nil && response.Body != nil {
		response.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return newWebSocketConn(conn), nil
}

// webSocketListener serves the upgrade endpoint at the URL path (or
// "/") on its own HTTP server.
type webSocketListener struct {
	listener net.Listener
	server   *http.Server
	path     string
	queue    *acceptQueue
	upgrader websocket.Upgrader
}

func listenWebSocket(address *url.URL, o *listenOptions) (Listener, error) {
	path := address.Path
	if path == "" {
		path = "/"
	}

	listener, err := net.Listen("tcp", address.Host)
	if err != nil {
		return nil, err
	}

	l := &webSocketListener{
		listener: listener,
		path:     path,
		queue:    newAcceptQueue(),
		upgrader: websocket.Upgrader{
			// Editor frontends connect from arbitrary origins,
			// including file:// and wasm hosts.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, l.upgrade)
	for pattern, handler := range o.handlers {
		mux.Handle(pattern, handler)
	}
	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = l.server.Serve(listener)
		l.queue.shutdown()
	}()
	return l, nil
}

func (l *webSocketListener) upgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		return
	}
	l.queue.offer(newWebSocketConn(conn))
}

func (l *webSocketListener) Accept(ctx context.Context) (Conn, error) {
	return l.queue.accept(ctx)
}

func (l *webSocketListener) Address() string {
	return (&url.URL{Scheme: "ws", Host: l.listener.Addr().String(), Path: l.path}).String()
}

// Close stops the HTTP server. Connections already handed out by
// Accept stay open; their owners close them.
func (l *webSocketListener) Close() error {
	l.queue.shutdown()
	err := l.server.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
