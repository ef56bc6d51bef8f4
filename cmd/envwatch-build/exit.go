// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
)

// exitError ends the process with code without printing anything more:
// the command has already written its own output.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }

// ExitCode implements process.ExitCoder.
func (e *exitError) ExitCode() int { return e.code }

// usageError reports a command-line mistake and returns exit code 2.
func usageError(stderr io.Writer, format string, args ...any) error {
	fmt.Fprintf(stderr, "envwatch-build: "+format+"\n", args...)
	fmt.Fprintln(stderr, "Run 'envwatch-build --help' for usage.")
	return &exitError{code: 2}
}
