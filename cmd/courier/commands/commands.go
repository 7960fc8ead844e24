// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the courier command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/courier-editor/courier/cmd/courier/cli"
	"github.com/courier-editor/courier/lib/config"
	"github.com/courier-editor/courier/lib/version"
)

// Streams are the process streams commands read from and write to.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Root builds the complete command tree.
func Root(streams Streams) *cli.Command {
	return &cli.Command{
		Name: "courier",
		Description: `Courier: the messaging core of an editor.

Runs the RPC server, sends RPC commands through the local or remote
strategy, serves file requests, and bridges transports.`,
		HelpOutput: streams.Stderr,
		Subcommands: []*cli.Command{
			serverCommand(streams),
			callCommand(streams),
			fileCommand(streams),
			bridgeCommand(streams),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string) error {
					fmt.Fprintf(streams.Stdout, "courier %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

// loadConfig reads path, or the file named by COURIER_CONFIG, or falls
// back to the defaults when neither is set.
func loadConfig(path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case os.Getenv(config.EnvironmentVariable) != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}
