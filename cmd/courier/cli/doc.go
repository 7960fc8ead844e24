// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the courier
// binary.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory, and a Run
// function. [Command.Execute] handles flag parsing, subcommand
// routing, and help output with examples. Unknown subcommands and
// flags get a "did you mean" suggestion when a known name is within
// edit distance 3.
//
// [NewCommandLogger] builds the slog logger every command uses, and
// [ExitError] lets a command that already printed its own output exit
// non-zero without an extra error line.
package cli
