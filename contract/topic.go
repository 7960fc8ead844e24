// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"strings"

	"github.com/google/uuid"
)

// Placeholder is the substitution point in a Template.
const Placeholder = "{id}"

// Template is a topic with one Placeholder.
type Template string

// Expand substitutes id for the placeholder.
func (t Template) Expand(id string) string {
	return strings.Replace(string(t), Placeholder, id, 1)
}

const (
	TopicRPCCommand  = "rpc/command"
	TopicFileCommand = "file/command"
	TopicNotify      = "notify"

	TemplateRPCResult  Template = "rpc/{id}/result"
	TemplateFileResult Template = "file/{id}/result"
)

// RPCResultTopic is where the result of RPC request id is published.
func RPCResultTopic(id string) string { return TemplateRPCResult.Expand(id) }

// FileResultTopic is where the result of file request id is published.
func FileResultTopic(id string) string { return TemplateFileResult.Expand(id) }

// NewID returns a fresh correlation id.
func NewID() string { return uuid.NewString() }
