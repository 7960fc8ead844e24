// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/courier-editor/courier/broker"
	"github.com/courier-editor/courier/cmd/courier/cli"
	"github.com/courier-editor/courier/contract"
	"github.com/courier-editor/courier/filesystem"
	"github.com/courier-editor/courier/lib/config"
)

// fileFlags are shared by every file subcommand.
type fileFlags struct {
	configPath string
	root       string
}

func (f *fileFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.configPath, "config", "", "path to courier.yaml (default: $COURIER_CONFIG)")
	flagSet.StringVar(&f.root, "root", "", "directory that paths are resolved in (default: files.root)")
}

func fileCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "file",
		Summary: "Open, save, and list files through the file service",
		Description: `Send one request to the file service and print its reply.

Paths are relative to files.root (or --root) and cannot escape it.`,
		Subcommands: []*cli.Command{
			fileOpenCommand(streams),
			fileSaveCommand(streams),
			fileListCommand(streams),
		},
	}
}

func fileOpenCommand(streams Streams) *cli.Command {
	var flags fileFlags
	return &cli.Command{
		Name:    "open",
		Summary: "Print a file's contents",
		Usage:   "courier file open [flags] <path>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("open", pflag.ContinueOnError)
			flags.register(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			path, err := singlePath(args)
			if err != nil {
				return err
			}
			reply, err := fileRequest(streams, flags, contract.FileOpen{Path: path})
			if err != nil {
				return err
			}
			opened, ok := reply.(contract.FileOpened)
			if !ok {
				return fmt.Errorf("unexpected reply %T", reply)
			}
			_, err = streams.Stdout.Write(opened.Bytes)
			return err
		},
	}
}

func fileSaveCommand(streams Streams) *cli.Command {
	var flags fileFlags
	return &cli.Command{
		Name:    "save",
		Summary: "Write standard input to a file",
		Usage:   "courier file save [flags] <path>",
		Examples: []cli.Example{
			{Description: "Save a note", Command: "echo hello | courier file save notes/today.md"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("save", pflag.ContinueOnError)
			flags.register(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			path, err := singlePath(args)
			if err != nil {
				return err
			}
			data, err := io.ReadAll(streams.Stdin)
			if err != nil {
				return fmt.Errorf("reading standard input: %w", err)
			}
			reply, err := fileRequest(streams, flags, contract.FileSave{Path: path, Bytes: data})
			if err != nil {
				return err
			}
			saved, ok := reply.(contract.FileSaved)
			if !ok {
				return fmt.Errorf("unexpected reply %T", reply)
			}
			fmt.Fprintf(streams.Stdout, "saved %s (%d bytes)\n", saved.Path, len(data))
			return nil
		},
	}
}

func fileListCommand(streams Streams) *cli.Command {
	var flags fileFlags
	return &cli.Command{
		Name:    "list",
		Summary: "List a folder's entries",
		Usage:   "courier file list [flags] [path]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.register(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			path := "/"
			switch len(args) {
			case 0:
			case 1:
				path = args[0]
			default:
				return fmt.Errorf("expected at most one path, got %d", len(args))
			}
			reply, err := fileRequest(streams, flags, contract.FolderOpen{Path: path})
			if err != nil {
				return err
			}
			folder, ok := reply.(contract.FolderOpened)
			if !ok {
				return fmt.Errorf("unexpected reply %T", reply)
			}
			for _, entry := range folder.Entries {
				fmt.Fprintln(streams.Stdout, entry)
			}
			return nil
		},
	}
}

func singlePath(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one path, got %d", len(args))
	}
	return args[0], nil
}

// fileRequest runs request through a file service on the host
// filesystem. A FileError reply is returned as the error.
func fileRequest(streams Streams, flags fileFlags, request contract.FileRequest) (contract.FileReply, error) {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.root != "" {
		cfg.Files.Root = flags.root
	}
	logger, err := cli.NewCommandLogger(streams.Stderr, cfg.Log)
	if err != nil {
		return nil, err
	}
	return serveFile(afero.NewOsFs(), cfg.Files, logger, request)
}

func serveFile(fsys afero.Fs, settings config.FilesConfig, logger *slog.Logger, request contract.FileRequest) (contract.FileReply, error) {
	b := contract.NewBroker()
	var options []filesystem.Option
	if settings.Root != "" {
		options = append(options, filesystem.WithRoot(settings.Root))
	}
	service := filesystem.New(b, fsys, logger, options...)
	defer service.Close()

	id := contract.NewID()
	mailbox := b.Registry().Open(broker.WithCapacity(1))
	b.Subscribe(contract.FileResultTopic(id), mailbox)
	defer mailbox.Close()

	contract.Publish(b, contract.FileCommand{ID: id, Request: request})
	service.Update()

	message, ok := mailbox.Next()
	if !ok {
		return nil, errors.New("file service produced no reply")
	}
	result, ok := message.(contract.FileResult)
	if !ok {
		return nil, fmt.Errorf("unexpected message %T on %s", message, message.Topic())
	}
	if failure, ok := result.Reply.(contract.FileError); ok {
		return nil, failure
	}
	return result.Reply, nil
}
