// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/courier-editor/courier/lib/clock"
	"github.com/courier-editor/courier/lib/testutil"
	"github.com/courier-editor/courier/transport"
)

const testTimeout = 5 * time.Second

type serverHarness struct {
	server   *Server
	listener *queueListener
	clock    *clock.FakeClock
	cancel   context.CancelFunc
	done     chan struct{}

	// serveErr is Serve's result, valid once done is closed.
	serveErr error
}

func startServer(t *testing.T) *serverHarness {
	t.Helper()
	h := &serverHarness{
		listener: newQueueListener(),
		clock:    clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		done:     make(chan struct{}),
	}
	h.server = NewServer(h.listener, discardLogger(), WithClock(h.clock))

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		h.serveErr = h.server.Serve(ctx)
		close(h.done)
	}()
	t.Cleanup(func() {
		cancel()
		testutil.RequireClosed(t, h.done, testTimeout, "server shutdown")
	})
	return h
}

func (h *serverHarness) connect(t *testing.T) *scriptedConn {
	t.Helper()
	conn := newScriptedConn()
	testutil.RequireSend(t, h.listener.conns, transport.Conn(conn), testTimeout, "handing connection to server")
	return conn
}

func requestFrame(t *testing.T, id string, command Command) []byte {
	t.Helper()
	frame, err := EncodeRequest(Request{ID: id, Command: command})
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	return frame
}

func awaitResponse(t *testing.T, conn *scriptedConn) Response {
	t.Helper()
	frame := testutil.RequireReceive(t, conn.writes, testTimeout, "waiting for response")
	response, err := DecodeResponse(frame)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	return response
}

func TestServerAnswersRequests(t *testing.T) {
	h := startServer(t)
	conn := h.connect(t)

	testutil.RequireSend(t, conn.reads, readResult{frame: requestFrame(t, "X", Echo{Text: "hi"})}, testTimeout)
	response := awaitResponse(t, conn)

	if response.ID != "X" {
		t.Fatalf("response ID = %q, want X", response.ID)
	}
	if response.Result.Reply != (EchoReply{Text: "hi"}) {
		t.Fatalf("response result = %v", response.Result)
	}
	if got := promtestutil.ToFloat64(h.server.Metrics().ResponsesSent); got != 1 {
		t.Fatalf("responses_sent_total = %v, want 1", got)
	}
}

func TestServerProcessesSequentially(t *testing.T) {
	h := startServer(t)
	conn := h.connect(t)

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("req-%d", i)
		testutil.RequireSend(t, conn.reads, readResult{frame: requestFrame(t, id, Identify{})}, testTimeout)
		response := awaitResponse(t, conn)
		if response.Result.Reply != (ClientID{ID: id}) {
			t.Fatalf("response %d = %v", i, response.Result)
		}
	}
}

func TestServerIgnoresUndecodableFrames(t *testing.T) {
	h := startServer(t)
	conn := h.connect(t)

	testutil.RequireSend(t, conn.reads, readResult{frame: []byte("not cbor")}, testTimeout)
	testutil.RequireSend(t, conn.reads, readResult{frame: requestFrame(t, "after", Status{})}, testTimeout)

	// The only response is for the valid request; the garbage frame
	// produced nothing and did not end the connection.
	response := awaitResponse(t, conn)
	if response.ID != "after" {
		t.Fatalf("first response ID = %q, want after", response.ID)
	}
	select {
	case extra := <-conn.writes:
		t.Fatalf("unexpected extra frame %x", extra)
	default:
	}

	dropped := h.server.Metrics().FramesDropped.WithLabelValues(DropDecode)
	if got := promtestutil.ToFloat64(dropped); got != 1 {
		t.Fatalf("frames_dropped_total{reason=decode} = %v, want 1", got)
	}
	if got := promtestutil.ToFloat64(h.server.Metrics().FramesReceived); got != 2 {
		t.Fatalf("frames_received_total = %v, want 2", got)
	}
}

func TestServerRetriesTransientReadErrors(t *testing.T) {
	h := startServer(t)
	conn := h.connect(t)

	testutil.RequireSend(t, conn.reads, readResult{err: errors.New("transient")}, testTimeout)

	// The connection task is now sleeping on the clock, not reading.
	h.clock.WaitForTimers(1)
	select {
	case conn.reads <- readResult{frame: requestFrame(t, "early", Example{})}:
		t.Fatal("server read again before the retry interval elapsed")
	default:
	}

	h.clock.Advance(DefaultRetryInterval)
	testutil.RequireSend(t, conn.reads, readResult{frame: requestFrame(t, "late", Example{})}, testTimeout)
	if response := awaitResponse(t, conn); response.ID != "late" {
		t.Fatalf("response ID = %q, want late", response.ID)
	}
	if got := promtestutil.ToFloat64(h.server.Metrics().ReadRetries); got != 1 {
		t.Fatalf("read_retries_total = %v, want 1", got)
	}
}

func TestServerEndsConnectionOnClose(t *testing.T) {
	h := startServer(t)
	conn := h.connect(t)

	testutil.RequireSend(t, conn.reads, readResult{err: fmt.Errorf("%w: peer went away", transport.ErrClosed)}, testTimeout)

	// The task exits and closes its end without waiting on the clock.
	testutil.RequireClosed(t, conn.closed, testTimeout, "connection closed by server")
	if got := h.clock.PendingCount(); got != 0 {
		t.Fatalf("pending timers = %d, want 0", got)
	}
}

func TestServerCancelClosesConnections(t *testing.T) {
	h := startServer(t)
	first := h.connect(t)
	second := h.connect(t)

	// Make sure both connections are being served.
	for _, conn := range []*scriptedConn{first, second} {
		testutil.RequireSend(t, conn.reads, readResult{frame: requestFrame(t, "ping", Status{})}, testTimeout)
		awaitResponse(t, conn)
	}

	h.cancel()
	testutil.RequireClosed(t, h.done, testTimeout, "Serve returned")
	testutil.RequireClosed(t, first.closed, testTimeout, "first connection closed")
	testutil.RequireClosed(t, second.closed, testTimeout, "second connection closed")
	if h.serveErr != nil {
		t.Fatalf("Serve after cancel = %v, want nil", h.serveErr)
	}

	if got := promtestutil.ToFloat64(h.server.Metrics().Connections); got != 2 {
		t.Fatalf("connections_total = %v, want 2", got)
	}
}

func TestServerListenerFailureEndsServe(t *testing.T) {
	h := startServer(t)
	conn := h.connect(t)
	testutil.RequireSend(t, conn.reads, readResult{frame: requestFrame(t, "ping", Status{})}, testTimeout)
	awaitResponse(t, conn)

	// The context stays live, so this is a failure the caller must see.
	h.listener.Close()
	testutil.RequireClosed(t, h.done, testTimeout, "Serve returned after its listener closed")
	testutil.RequireClosed(t, conn.closed, testTimeout, "open connection closed")
	if !errors.Is(h.serveErr, transport.ErrClosed) {
		t.Fatalf("Serve = %v, want an error wrapping ErrClosed", h.serveErr)
	}
}

func TestServerCancelDuringRetry(t *testing.T) {
	h := startServer(t)
	conn := h.connect(t)

	testutil.RequireSend(t, conn.reads, readResult{err: errors.New("transient")}, testTimeout)
	h.clock.WaitForTimers(1)

	h.cancel()
	testutil.RequireClosed(t, h.done, testTimeout, "Serve returned while a connection was retrying")
}

func TestServerMetricsHandler(t *testing.T) {
	h := startServer(t)
	conn := h.connect(t)
	testutil.RequireSend(t, conn.reads, readResult{frame: requestFrame(t, "m", Example{})}, testTimeout)
	awaitResponse(t, conn)

	count, err := promtestutil.GatherAndCount(h.server.Metrics().Registry(),
		"courier_rpc_connections_total",
		"courier_rpc_frames_received_total",
		"courier_rpc_responses_sent_total",
	)
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("gathered %d series, want 3", count)
	}
	if h.server.Metrics().Handler() == nil {
		t.Fatal("Handler() returned nil")
	}
}
