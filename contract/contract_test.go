// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"testing"

	"github.com/google/uuid"

	"github.com/courier-editor/courier/rpc"
)

func TestTemplateExpand(t *testing.T) {
	tests := []struct {
		template Template
		id       string
		want     string
	}{
		{TemplateRPCResult, "abc123", "rpc/abc123/result"},
		{TemplateFileResult, "abc123", "file/abc123/result"},
		{TemplateRPCResult, "", "rpc//result"},
		{Template("no/placeholder"), "x", "no/placeholder"},
	}
	for _, test := range tests {
		if got := test.template.Expand(test.id); got != test.want {
			t.Errorf("%q.Expand(%q) = %q, want %q", test.template, test.id, got, test.want)
		}
	}
}

// A subscriber computes the topic it listens on with the helpers; the
// publisher relies on Topic(). The two must agree for every variant.
func TestTopicDerivation(t *testing.T) {
	id := NewID()
	tests := []struct {
		message    Message
		subscriber string
	}{
		{RPCCommand{ID: id, Command: rpc.Example{}}, TopicRPCCommand},
		{RPCResult{ID: id, Result: rpc.Success(rpc.Empty{})}, RPCResultTopic(id)},
		{FileCommand{ID: id, Request: FileOpen{Path: "/a"}}, TopicFileCommand},
		{FileResult{ID: id, Reply: FileSaved{Path: "/a"}}, FileResultTopic(id)},
		{Notify{Text: "hello"}, TopicNotify},
	}
	for _, test := range tests {
		if got := test.message.Topic(); got != test.subscriber {
			t.Errorf("%T.Topic() = %q, subscriber listens on %q", test.message, got, test.subscriber)
		}
		if again := test.message.Topic(); again != test.message.Topic() {
			t.Errorf("%T.Topic() is not stable", test.message)
		}
	}
}

func TestResultTopicsAreDistinctPerID(t *testing.T) {
	first, second := NewID(), NewID()
	if first == second {
		t.Fatal("NewID returned the same id twice")
	}
	if RPCResultTopic(first) == RPCResultTopic(second) {
		t.Fatal("distinct ids share a result topic")
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("NewID() = %q is not a UUID: %v", first, err)
	}
}

func TestPublishRoutesByTopic(t *testing.T) {
	b := NewBroker()
	id := NewID()

	mine := b.Registry().Open()
	other := b.Registry().Open()
	commands := b.Registry().Open()
	b.Subscribe(RPCResultTopic(id), mine)
	b.Subscribe(RPCResultTopic(NewID()), other)
	b.Subscribe(TopicRPCCommand, commands)

	Publish(b, RPCResult{ID: id, Result: rpc.Success(rpc.ClientID{ID: id})})
	Publish(b, RPCCommand{ID: id, Command: rpc.Status{}})

	got, ok := mine.Next()
	if !ok {
		t.Fatal("result not delivered to its subscriber")
	}
	if result, isResult := got.(RPCResult); !isResult || result.ID != id {
		t.Fatalf("received %#v", got)
	}
	if other.Len() != 0 {
		t.Fatal("result leaked to another request's topic")
	}
	if commands.Len() != 1 {
		t.Fatalf("rpc/command subscriber has %d messages, want 1", commands.Len())
	}
}

func TestCloneIsDeep(t *testing.T) {
	saved := FileCommand{ID: "s", Request: FileSave{Path: "/f", Bytes: []byte("abc")}}
	clone := saved.Clone().(FileCommand)
	clone.Request.(FileSave).Bytes[0] = 'X'
	if saved.Request.(FileSave).Bytes[0] != 'a' {
		t.Fatal("FileCommand clone shares Bytes")
	}

	opened := FileResult{ID: "o", Reply: FileOpened{Path: "/f", Bytes: []byte("abc")}}
	openedClone := opened.Clone().(FileResult)
	openedClone.Reply.(FileOpened).Bytes[0] = 'X'
	if opened.Reply.(FileOpened).Bytes[0] != 'a' {
		t.Fatal("FileResult clone shares Bytes")
	}

	listing := FileResult{ID: "l", Reply: FolderOpened{Path: "/", Entries: []string{"a"}}}
	listingClone := listing.Clone().(FileResult)
	listingClone.Reply.(FolderOpened).Entries[0] = "changed"
	if listing.Reply.(FolderOpened).Entries[0] != "a" {
		t.Fatal("FolderOpened clone shares Entries")
	}

	failed := RPCResult{ID: "f", Result: rpc.Failure(rpc.ConnectionError())}
	failedClone := failed.Clone().(RPCResult)
	failedClone.Result.Err.Detail = "changed"
	if failed.Result.Err.Detail != "" {
		t.Fatal("RPCResult clone shares the Error")
	}
}

func TestCloneNilPayload(t *testing.T) {
	if got := (FileCommand{ID: "x"}).Clone().(FileCommand); got.Request != nil {
		t.Fatalf("clone of empty FileCommand = %#v", got)
	}
	if got := (FileResult{ID: "x"}).Clone().(FileResult); got.Reply != nil {
		t.Fatalf("clone of empty FileResult = %#v", got)
	}
}

func TestFileErrorMessage(t *testing.T) {
	err := FileError{Path: "/missing", Detail: "file does not exist"}
	if got, want := err.Error(), "/missing: file does not exist"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
