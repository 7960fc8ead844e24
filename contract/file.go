// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"fmt"
	"slices"
)

// FileRequest is the payload of a FileCommand.
type FileRequest interface {
	cloneRequest() FileRequest
}

// FileReply is the payload of a FileResult.
type FileReply interface {
	cloneReply() FileReply
}

// FileOpen reads the file at Path. Tag is echoed back so the requester
// can tell concurrent opens apart.
type FileOpen struct {
	Path string
	Tag  string
}

// FileSave writes Bytes to Path, replacing any existing file.
type FileSave struct {
	Path  string
	Bytes []byte
}

// FolderOpen lists the directory at Path.
type FolderOpen struct {
	Path string
	Tag  string
}

// FileOpened answers FileOpen.
type FileOpened struct {
	Path  string
	Bytes []byte
	Tag   string
}

// FileSaved answers FileSave.
type FileSaved struct {
	Path string
}

// FolderOpened answers FolderOpen. Entries are names relative to Path,
// sorted, with a trailing "/" on directories.
type FolderOpened struct {
	Path    string
	Tag     string
	Entries []string
}

// FileError reports a failed file request.
type FileError struct {
	Path   string
	Detail string
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Detail)
}

func (r FileOpen) cloneRequest() FileRequest   { return r }
func (r FolderOpen) cloneRequest() FileRequest { return r }

func (r FileSave) cloneRequest() FileRequest {
	r.Bytes = slices.Clone(r.Bytes)
	return r
}

func (r FileOpened) cloneReply() FileReply {
	r.Bytes = slices.Clone(r.Bytes)
	return r
}

func (r FileSaved) cloneReply() FileReply { return r }

func (r FolderOpened) cloneReply() FileReply {
	r.Entries = slices.Clone(r.Entries)
	return r
}

func (r FileError) cloneReply() FileReply { return r }
