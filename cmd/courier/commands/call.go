// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/courier-editor/courier/backend"
	"github.com/courier-editor/courier/cmd/courier/cli"
	"github.com/courier-editor/courier/contract"
	"github.com/courier-editor/courier/lib/clock"
	"github.com/courier-editor/courier/lib/config"
	"github.com/courier-editor/courier/loop"
	"github.com/courier-editor/courier/notify"
	"github.com/courier-editor/courier/rpc"
)

func callCommand(streams Streams) *cli.Command {
	var (
		configPath string
		strategy   string
		address    string
		timeout    time.Duration
	)

	return &cli.Command{
		Name:    "call",
		Summary: "Send an RPC command and print its result",
		Description: `Publish one RPC command on the broker and wait for its result.

With --strategy local the command runs in-process. With --strategy
remote it is sent to the server at --address. The exit status is 1
when the result is a failure.

Commands: example, echo <text>, identify, status.`,
		Usage: "courier call [flags] <command> [argument...]",
		Examples: []cli.Example{
			{Description: "Echo through the local executor", Command: "courier call echo hello"},
			{Description: "Ask a remote server for its status", Command: "courier call --strategy remote --address tcp://127.0.0.1:9001 status"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("call", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "path to courier.yaml (default: $COURIER_CONFIG)")
			flagSet.StringVar(&strategy, "strategy", "", "local or remote (default: client.strategy)")
			flagSet.StringVar(&address, "address", "", "server address for the remote strategy (default: client.address)")
			flagSet.DurationVar(&timeout, "timeout", 0, "how long to wait for the result (default: client.call_timeout)")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return errors.New("command required (example, echo, identify, or status)")
			}
			command, err := rpc.ParseCommand(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if strategy != "" {
				cfg.Client.Strategy = config.Strategy(strategy)
			}
			if address != "" {
				cfg.Client.Address = address
			}
			if timeout != 0 {
				cfg.Client.CallTimeout = timeout
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger, err := cli.NewCommandLogger(streams.Stderr, cfg.Log)
			if err != nil {
				return err
			}

			result, err := call(ctx, cfg.Client, logger, command)
			if err != nil {
				return err
			}
			fmt.Fprintln(streams.Stdout, result)
			if !result.OK() {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// call wires a broker to the backend and the notification consumer,
// publishes command, and ticks the host loop until the result arrives
// or settings.CallTimeout passes.
func call(ctx context.Context, settings config.ClientConfig, logger *slog.Logger, command rpc.Command) (rpc.Result, error) {
	strategy, err := backend.ParseStrategy(string(settings.Strategy))
	if err != nil {
		return rpc.Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, settings.CallTimeout)
	defer cancel()

	b := contract.NewBroker()
	host := loop.New(clock.Real(), settings.TickInterval, logger)

	router := backend.New(b, logger,
		backend.WithStrategy(strategy),
		backend.WithMailboxCapacity(settings.MailboxCapacity),
	)
	defer router.Close()
	notifications := notify.New(b, logger)
	defer notifications.Close()

	if strategy == backend.Remote {
		// A failed connect is announced on notify, and the call then
		// fails with a connection error.
		if err := router.Connect(ctx, settings.Address, host.Wake); err != nil {
			logger.Debug("continuing without a connection", "error", err)
		}
	}

	pending := backend.Call(b, command)
	defer pending.Cancel()

	var (
		result   rpc.Result
		answered bool
	)
	host.Add(router)
	host.Add(notifications)
	host.Add(loop.TaskFunc(func() {
		if answered {
			return
		}
		if result, answered = pending.Result(); answered {
			cancel()
		}
	}))

	if err := host.Run(ctx); err != nil {
		return rpc.Result{}, err
	}
	if answered {
		return result, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logger.Warn("rpc call timed out", "id", pending.ID, "timeout", settings.CallTimeout)
		return rpc.Failure(rpc.TimeoutError()), nil
	}
	return rpc.Result{}, ctx.Err()
}
