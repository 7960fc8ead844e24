// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "courier",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(_ context.Context, args []string) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "server",
				Run: func(_ context.Context, args []string) error {
					called = "server"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"server"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "server" {
		t.Errorf("dispatched to %q, want %q", called, "server")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "courier",
		Subcommands: []*Command{
			{
				Name: "file",
				Subcommands: []*Command{
					{
						Name: "open",
						Run: func(_ context.Context, args []string) error {
							called = "file open"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"file", "open", "notes.md"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "file open" {
		t.Errorf("dispatched to %q, want %q", called, "file open")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "notes.md" {
		t.Errorf("args = %v, want [notes.md]", receivedArgs)
	}
}

func TestCommand_Execute_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")

	var got any
	command := &Command{
		Name: "call",
		Run: func(ctx context.Context, _ []string) error {
			got = ctx.Value(key{})
			return nil
		},
	}
	if err := command.Execute(ctx, nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got != "value" {
		t.Errorf("context value = %v", got)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var address string
	var target string

	command := &Command{
		Name: "call",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("call", pflag.ContinueOnError)
			flagSet.StringVar(&address, "address", "ws://127.0.0.1:9000/rpc", "server address")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--address", "tcp://10.0.0.2:9000", "status"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if address != "tcp://10.0.0.2:9000" {
		t.Errorf("address = %q", address)
	}
	if target != "status" {
		t.Errorf("target = %q, want %q", target, "status")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "call",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("call", pflag.ContinueOnError)
			flagSet.String("strategy", "local", "strategy")
			flagSet.Duration("timeout", 0, "timeout")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--stratgy", "remote"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --strategy?") {
		t.Errorf("error %q should suggest --strategy", err)
	}
	if !strings.Contains(err.Error(), "Run 'call --help' for usage.") {
		t.Errorf("error %q should point to --help", err)
	}
}

func TestCommand_Execute_UnknownCommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "courier",
		Subcommands: []*Command{
			{Name: "server", Run: func(context.Context, []string) error { return nil }},
			{Name: "version", Run: func(context.Context, []string) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), []string{"sever"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "server"?`) {
		t.Errorf("error %q should suggest server", err)
	}

	err = root.Execute(context.Background(), []string{"frobnicate"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error %v should have no suggestion", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:       "courier",
		HelpOutput: &help,
		Subcommands: []*Command{
			{Name: "version", Summary: "Print version information"},
		},
	}

	err := root.Execute(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(help.String(), "version") {
		t.Errorf("help output should list subcommands:\n%s", help.String())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "call",
		Description: "Send an RPC command and print its result.",
		Usage:       "courier call [flags] <command> [argument]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("call", pflag.ContinueOnError)
			flagSet.String("strategy", "local", "where the command executes")
			return flagSet
		},
		Examples: []Example{
			{Description: "Echo through the local executor", Command: "courier call echo hello"},
		},
	}

	var output bytes.Buffer
	command.PrintHelp(&output)
	help := output.String()

	for _, want := range []string{
		"Send an RPC command and print its result.",
		"Usage:\n  courier call [flags] <command> [argument]",
		"--strategy",
		"where the command executes",
		"# Echo through the local executor",
		"courier call echo hello",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	var help bytes.Buffer
	ran := false
	root := &Command{
		Name:       "courier",
		HelpOutput: &help,
		Subcommands: []*Command{
			{
				Name:    "version",
				Summary: "Print version information",
				Run:     func(context.Context, []string) error { ran = true; return nil },
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"version", "--help"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if ran {
		t.Error("--help should not run the command")
	}
	if !strings.Contains(help.String(), "Usage:\n  courier version [flags]") {
		t.Errorf("help output:\n%s", help.String())
	}
}
