// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/courier-editor/courier/bridge"
	"github.com/courier-editor/courier/cmd/courier/cli"
)

func bridgeCommand(streams Streams) *cli.Command {
	var (
		configPath string
		listen     string
		target     string
	)

	return &cli.Command{
		Name:    "bridge",
		Summary: "Relay RPC frames from one transport to another",
		Description: `Listen on --listen and relay every connection to --target.

Frames are copied whole in both directions, so clients limited to one
transport can reach a server listening on another.`,
		Usage: "courier bridge [flags] --listen <address>",
		Examples: []cli.Example{
			{
				Description: "Let TCP clients reach a WebSocket server",
				Command:     "courier bridge --listen tcp://127.0.0.1:9001 --target ws://127.0.0.1:9000/rpc",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("bridge", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "path to courier.yaml (default: $COURIER_CONFIG)")
			flagSet.StringVar(&listen, "listen", "", "address to accept clients on (required)")
			flagSet.StringVar(&target, "target", "", "server address to relay to (default: client.address)")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			if listen == "" {
				return errors.New("--listen is required")
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if target != "" {
				cfg.Client.Address = target
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger, err := cli.NewCommandLogger(streams.Stderr, cfg.Log)
			if err != nil {
				return err
			}

			relay := &bridge.Bridge{
				ListenAddress: listen,
				TargetAddress: cfg.Client.Address,
				Logger:        logger,
			}
			if err := relay.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(streams.Stdout, "bridging %s to %s\n", relay.Address(), relay.TargetAddress)

			<-ctx.Done()
			relay.Stop()
			return nil
		},
	}
}
