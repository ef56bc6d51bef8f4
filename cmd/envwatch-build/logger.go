// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// newCommandLogger creates the command's structured logger. When w is a
// terminal it uses slog.TextHandler for human-readable output; when it
// is piped or redirected (the daemon, scripts, CI) it uses
// slog.JSONHandler so records can be parsed.
func newCommandLogger(w io.Writer, level string) (*slog.Logger, error) {
	var minimum slog.Level
	if err := minimum.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", level)
	}

	var handler slog.Handler
	options := &slog.HandlerOptions{Level: minimum}
	if isTerminal(w) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler), nil
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
