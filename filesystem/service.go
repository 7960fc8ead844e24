// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"

	"github.com/spf13/afero"

	"github.com/courier-editor/courier/broker"
	"github.com/courier-editor/courier/contract"
)

// Option configures a Service.
type Option func(*Service)

// WithRoot confines every request path to root. Requests cannot
// escape it with "..".
func WithRoot(root string) Option {
	return func(s *Service) { s.root = root }
}

// WithMailboxCapacity bounds the file/command mailbox.
func WithMailboxCapacity(capacity int) Option {
	return func(s *Service) { s.capacity = capacity }
}

// Service serves file/command. It belongs to the host loop goroutine.
type Service struct {
	logger   *slog.Logger
	broker   *contract.Broker
	fs       afero.Fs
	root     string
	capacity int
	mailbox  *contract.Mailbox
}

// New subscribes a file service to file/command on b.
func New(b *contract.Broker, filesystem afero.Fs, logger *slog.Logger, options ...Option) *Service {
	s := &Service{
		logger:   logger,
		broker:   b,
		fs:       filesystem,
		capacity: broker.DefaultCapacity,
	}
	for _, option := range options {
		option(s)
	}
	if s.root != "" {
		s.fs = afero.NewBasePathFs(s.fs, s.root)
	}
	s.mailbox = b.Registry().Open(broker.WithCapacity(s.capacity))
	b.Subscribe(contract.TopicFileCommand, s.mailbox)
	return s
}

// Update serves every pending file command.
func (s *Service) Update() {
	for _, message := range s.mailbox.Drain() {
		switch message := message.(type) {
		case contract.FileCommand:
			reply := s.Handle(message.Request)
			contract.Publish(s.broker, contract.FileResult{ID: message.ID, Reply: reply})
		case contract.RPCCommand, contract.RPCResult, contract.FileResult, contract.Notify:
			s.logger.Debug("ignoring message on file/command", "topic", message.Topic())
		}
	}
}

// Handle executes one request and returns its reply. It never returns
// nil.
func (s *Service) Handle(request contract.FileRequest) contract.FileReply {
	switch request := request.(type) {
	case contract.FileOpen:
		return s.open(request)
	case contract.FileSave:
		return s.save(request)
	case contract.FolderOpen:
		return s.list(request)
	default:
		s.logger.Error("unknown file request", "type", fmt.Sprintf("%T", request))
		return contract.FileError{Detail: "unrecognized file request"}
	}
}

func (s *Service) open(request contract.FileOpen) contract.FileReply {
	name := clean(request.Path)
	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		return s.failure(request.Path, "opening file", err)
	}
	s.logger.Debug("file opened", "path", request.Path, "bytes", len(data))
	return contract.FileOpened{Path: request.Path, Bytes: data, Tag: request.Tag}
}

func (s *Service) save(request contract.FileSave) contract.FileReply {
	name := clean(request.Path)
	if dir := path.Dir(name); dir != "/" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return s.failure(request.Path, "creating parent directory", err)
		}
	}
	if err := afero.WriteFile(s.fs, name, request.Bytes, 0o644); err != nil {
		return s.failure(request.Path, "saving file", err)
	}
	s.logger.Info("file saved", "path", request.Path, "bytes", len(request.Bytes))
	return contract.FileSaved{Path: request.Path}
}

func (s *Service) list(request contract.FolderOpen) contract.FileReply {
	name := clean(request.Path)
	infos, err := afero.ReadDir(s.fs, name)
	if err != nil {
		return s.failure(request.Path, "opening folder", err)
	}
	entries := make([]string, 0, len(infos))
	for _, info := range infos {
		entry := info.Name()
		if info.IsDir() {
			entry += "/"
		}
		entries = append(entries, entry)
	}
	slices.Sort(entries)
	return contract.FolderOpened{Path: request.Path, Tag: request.Tag, Entries: entries}
}

func (s *Service) failure(requestPath, action string, err error) contract.FileError {
	s.logger.Warn("file request failed", "path", requestPath, "action", action, "error", err)
	return contract.FileError{Path: requestPath, Detail: describe(err)}
}

// Close unsubscribes and releases the mailbox.
func (s *Service) Close() {
	_ = s.broker.Unsubscribe(contract.TopicFileCommand, s.mailbox.ID())
	s.mailbox.Close()
}

// clean anchors p at the filesystem root so ".." cannot climb out of
// a BasePathFs.
func clean(p string) string {
	return path.Clean("/" + p)
}

// describe reduces err to a stable, path-free message.
func describe(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "no such file or directory"
	case errors.Is(err, fs.ErrPermission):
		return "permission denied"
	case errors.Is(err, fs.ErrExist):
		return "already exists"
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
