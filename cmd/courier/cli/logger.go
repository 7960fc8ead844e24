// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/courier-editor/courier/lib/config"
)

// NewCommandLogger creates the structured logger for a command.
//
// Format "text" and "json" select the handler directly. "auto" (or
// empty) uses slog.TextHandler when w is a terminal and
// slog.JSONHandler otherwise, so piped output stays machine-parseable.
func NewCommandLogger(w io.Writer, settings config.LogConfig) (*slog.Logger, error) {
	level, err := settings.SlogLevel()
	if err != nil {
		return nil, err
	}
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch settings.Format {
	case "text":
		handler = slog.NewTextHandler(w, options)
	case "json":
		handler = slog.NewJSONHandler(w, options)
	case "auto", "":
		if isTerminal(w) {
			handler = slog.NewTextHandler(w, options)
		} else {
			handler = slog.NewJSONHandler(w, options)
		}
	default:
		return nil, fmt.Errorf("log.format: unknown format %q (want text, json, or auto)", settings.Format)
	}
	return slog.New(handler), nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
