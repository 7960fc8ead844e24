// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/courier-editor/courier/cmd/courier/cli"
	"github.com/courier-editor/courier/contract"
	"github.com/courier-editor/courier/lib/config"
	"github.com/courier-editor/courier/lib/testutil"
	"github.com/courier-editor/courier/rpc"
	"github.com/courier-editor/courier/transport"
)

const testTimeout = 10 * time.Second

// syncBuffer is a bytes.Buffer safe for a command goroutine to write
// while the test reads.
type syncBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

type harness struct {
	stdin  *strings.Reader
	stdout *syncBuffer
	stderr *syncBuffer
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
	return &harness{
		stdin:  strings.NewReader(stdin),
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
	}
}

func (h *harness) execute(ctx context.Context, args ...string) error {
	root := Root(Streams{Stdin: h.stdin, Stdout: h.stdout, Stderr: h.stderr})
	return root.Execute(ctx, args)
}

func TestVersion(t *testing.T) {
	h := newHarness(t, "")
	if err := h.execute(context.Background(), "version"); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(h.stdout.String(), "courier ") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}

func TestCallLocal(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"call", "example"}, "success: empty {}\n"},
		{[]string{"call", "echo", "hello", "world"}, "success: echo {Text:hello world}\n"},
		{[]string{"call", "--strategy", "local", "status"}, "success: connection_status {Connected:true}\n"},
	}
	for _, test := range tests {
		h := newHarness(t, "")
		if err := h.execute(context.Background(), test.args...); err != nil {
			t.Fatalf("%v: %v\nstderr: %s", test.args, err, h.stderr.String())
		}
		if got := h.stdout.String(); got != test.want {
			t.Errorf("%v: stdout = %q, want %q", test.args, got, test.want)
		}
	}
}

func TestCallRejectsUnknownCommand(t *testing.T) {
	h := newHarness(t, "")
	err := h.execute(context.Background(), "call", "reboot")
	if err == nil || !strings.Contains(err.Error(), `unknown command "reboot"`) {
		t.Fatalf("error = %v", err)
	}

	err = h.execute(context.Background(), "call")
	if err == nil || !strings.Contains(err.Error(), "command required") {
		t.Fatalf("error = %v", err)
	}
}

func TestCallRejectsInvalidStrategy(t *testing.T) {
	h := newHarness(t, "")
	err := h.execute(context.Background(), "call", "--strategy", "hybrid", "example")
	if err == nil || !strings.Contains(err.Error(), "client.strategy") {
		t.Fatalf("error = %v", err)
	}
}

func TestCallRemote(t *testing.T) {
	listener, err := transport.Listen("tcp://127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	server := rpc.NewServer(listener, slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		server.Serve(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		testutil.RequireClosed(t, done, testTimeout, "server shutdown")
	}()

	h := newHarness(t, "")
	err = h.execute(context.Background(), "call",
		"--strategy", "remote",
		"--address", listener.Address(),
		"--timeout", testTimeout.String(),
		"echo", "over the wire")
	if err != nil {
		t.Fatalf("call: %v\nstderr: %s", err, h.stderr.String())
	}
	if got, want := h.stdout.String(), "success: echo {Text:over the wire}\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestCallRemoteUnavailable(t *testing.T) {
	listener, err := transport.Listen("tcp://127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	address := listener.Address()
	listener.Close()

	h := newHarness(t, "")
	err = h.execute(context.Background(), "call", "--strategy", "remote", "--address", address, "status")

	var exit *cli.ExitError
	if !errors.As(err, &exit) || exit.Code != 1 {
		t.Fatalf("error = %v, want exit code 1", err)
	}
	if !strings.HasPrefix(h.stdout.String(), "failure: ") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
	if !strings.Contains(h.stderr.String(), "Failed to connect to") {
		t.Errorf("connect failure was not announced:\n%s", h.stderr.String())
	}
}

func TestFileSaveOpenList(t *testing.T) {
	root := t.TempDir()

	h := newHarness(t, "first line\n")
	if err := h.execute(context.Background(), "file", "save", "--root", root, "notes/today.md"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := h.stdout.String(); got != "saved notes/today.md (11 bytes)\n" {
		t.Errorf("save stdout = %q", got)
	}
	data, err := os.ReadFile(filepath.Join(root, "notes", "today.md"))
	if err != nil || string(data) != "first line\n" {
		t.Fatalf("file on disk = %q, %v", data, err)
	}

	h = newHarness(t, "")
	if err := h.execute(context.Background(), "file", "open", "--root", root, "notes/today.md"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := h.stdout.String(); got != "first line\n" {
		t.Errorf("open stdout = %q", got)
	}

	if err := os.WriteFile(filepath.Join(root, "README"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	h = newHarness(t, "")
	if err := h.execute(context.Background(), "file", "list", "--root", root); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := h.stdout.String(); got != "README\nnotes/\n" {
		t.Errorf("list stdout = %q", got)
	}
}

func TestFileOpenMissing(t *testing.T) {
	h := newHarness(t, "")
	err := h.execute(context.Background(), "file", "open", "--root", t.TempDir(), "absent.txt")

	var failure contract.FileError
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v, want contract.FileError", err)
	}
	if failure.Path != "absent.txt" || failure.Detail != "no such file or directory" {
		t.Errorf("failure = %#v", failure)
	}
}

func TestFileSubcommandRequired(t *testing.T) {
	h := newHarness(t, "")
	err := h.execute(context.Background(), "file", "opne")
	if err == nil || !strings.Contains(err.Error(), `did you mean "open"?`) {
		t.Fatalf("error = %v", err)
	}
}

func TestServeFileInMemory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/srv/docs/a.txt", []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.DiscardHandler)

	reply, err := serveFile(fsys, config.FilesConfig{Root: "/srv"}, logger, contract.FolderOpen{Path: "docs"})
	if err != nil {
		t.Fatalf("serveFile: %v", err)
	}
	folder, ok := reply.(contract.FolderOpened)
	if !ok || len(folder.Entries) != 1 || folder.Entries[0] != "a.txt" {
		t.Fatalf("reply = %#v", reply)
	}
}

func TestServerCommand(t *testing.T) {
	h := newHarness(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- h.execute(ctx, "server",
			"--listen", "ws://127.0.0.1:0/rpc",
			"--listen", "tcp://127.0.0.1:0")
	}()

	listening := regexp.MustCompile(`listening on (\S+)`)
	testutil.EventuallyTrue(t, testTimeout, func() bool {
		return len(listening.FindAllString(h.stdout.String(), -1)) == 2
	}, "server never reported both listeners:\n%s", h.stderr.String())

	var webSocket string
	for _, match := range listening.FindAllStringSubmatch(h.stdout.String(), -1) {
		if strings.HasPrefix(match[1], "ws://") {
			webSocket = match[1]
		}
	}
	parsed, err := url.Parse(webSocket)
	if err != nil || parsed.Host == "" {
		t.Fatalf("websocket address %q: %v", webSocket, err)
	}

	response, err := http.Get("http://" + parsed.Host + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	response.Body.Close()
	if !strings.Contains(string(body), "courier_rpc_connections_total") {
		t.Errorf("metrics body missing courier_rpc_connections_total:\n%s", body)
	}

	cancel()
	if err := testutil.RequireReceive(t, result, testTimeout, "server did not stop"); err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestServerRejectsBadAddress(t *testing.T) {
	h := newHarness(t, "")
	err := h.execute(context.Background(), "server", "--listen", "http://127.0.0.1:0")
	if err == nil || !strings.Contains(err.Error(), "unsupported scheme") {
		t.Fatalf("error = %v", err)
	}
}

func TestBridgeCommand(t *testing.T) {
	listener, err := transport.Listen("ws://127.0.0.1:0/rpc")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	server := rpc.NewServer(listener, slog.New(slog.DiscardHandler))
	serverContext, stopServer := context.WithCancel(context.Background())
	served := make(chan struct{})
	go func() {
		server.Serve(serverContext)
		close(served)
	}()
	defer func() {
		stopServer()
		testutil.RequireClosed(t, served, testTimeout, "server shutdown")
	}()

	h := newHarness(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- h.execute(ctx, "bridge", "--listen", "tcp://127.0.0.1:0", "--target", listener.Address())
	}()

	bridging := regexp.MustCompile(`bridging (\S+) to`)
	testutil.EventuallyTrue(t, testTimeout, func() bool {
		return bridging.MatchString(h.stdout.String())
	}, "bridge never started:\n%s", h.stderr.String())
	address := bridging.FindStringSubmatch(h.stdout.String())[1]

	caller := newHarness(t, "")
	if err := caller.execute(context.Background(), "call", "--strategy", "remote", "--address", address, "identify"); err != nil {
		t.Fatalf("call through bridge: %v\n%s", err, caller.stderr.String())
	}
	if !strings.HasPrefix(caller.stdout.String(), "success: client_id") {
		t.Errorf("stdout = %q", caller.stdout.String())
	}

	cancel()
	if err := testutil.RequireReceive(t, result, testTimeout, "bridge did not stop"); err != nil {
		t.Fatalf("bridge: %v", err)
	}
}
