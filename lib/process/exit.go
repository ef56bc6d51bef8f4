// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ExitCoder is an error that already told the user what went wrong and
// only carries the status the process should exit with.
type ExitCoder interface {
	error
	ExitCode() int
}

// Exit terminates the process for the error returned by a command's
// run function. A nil error exits 0.
func Exit(err error) {
	os.Exit(Report(os.Stderr, filepath.Base(os.Args[0]), err))
}

// Report writes err to w as "program: error: err" and returns the exit
// status for it. An [ExitCoder] anywhere in the chain is not printed and
// supplies the status itself; any other error exits 1.
func Report(w io.Writer, program string, err error) int {
	if err == nil {
		return 0
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "%s: error: %v\n", program, err)
	return 1
}
