// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/courier-editor/courier/cmd/courier/cli"
	"github.com/courier-editor/courier/rpc"
	"github.com/courier-editor/courier/transport"
)

func serverCommand(streams Streams) *cli.Command {
	var (
		configPath string
		addresses  []string
	)

	return &cli.Command{
		Name:    "server",
		Summary: "Serve RPC commands over WebSocket or TCP",
		Description: `Run the RPC server until interrupted.

Each --listen address gets its own listener; all of them share one
executor and one set of metrics. WebSocket listeners also serve
Prometheus metrics at server.metrics_path.`,
		Usage: "courier server [flags]",
		Examples: []cli.Example{
			{Description: "Serve on the configured address", Command: "courier server"},
			{Description: "Serve WebSocket and TCP clients", Command: "courier server --listen ws://0.0.0.0:9000/rpc --listen tcp://0.0.0.0:9001"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "path to courier.yaml (default: $COURIER_CONFIG)")
			flagSet.StringArrayVar(&addresses, "listen", nil, "listen address, repeatable (default: server.address)")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if len(addresses) == 0 {
				addresses = []string{cfg.Server.Address}
			}
			for _, address := range addresses {
				cfg.Server.Address = address
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid configuration: %w", err)
				}
			}
			logger, err := cli.NewCommandLogger(streams.Stderr, cfg.Log)
			if err != nil {
				return err
			}

			metrics := rpc.NewServerMetrics()
			var options []transport.ListenOption
			if cfg.Server.MetricsPath != "" {
				options = append(options, transport.WithHandler(cfg.Server.MetricsPath, metrics.Handler()))
			}

			var (
				listeners []transport.Listener
				servers   []*rpc.Server
			)
			for _, address := range addresses {
				listener, err := transport.Listen(address, options...)
				if err != nil {
					for _, opened := range listeners {
						opened.Close()
					}
					return err
				}
				listeners = append(listeners, listener)
				servers = append(servers, rpc.NewServer(listener, logger.With("listener", listener.Address()),
					rpc.WithMetrics(metrics),
					rpc.WithRetryInterval(cfg.Server.RetryInterval),
				))
				fmt.Fprintf(streams.Stdout, "listening on %s\n", listener.Address())
				if strings.HasPrefix(listener.Address(), "ws://") && cfg.Server.MetricsPath != "" {
					logger.Info("metrics available", "path", cfg.Server.MetricsPath, "listener", listener.Address())
				}
			}

			group, ctx := errgroup.WithContext(ctx)
			for _, server := range servers {
				group.Go(func() error { return server.Serve(ctx) })
			}
			err = group.Wait()
			logger.Info("server stopped")
			return err
		},
	}
}
