// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"fmt"
	"strings"

	"github.com/envwatch/envwatch/lib/nix"
)

// InstantiateError is a failure to run phase 1 at all: the
// instrumentation script could not be stored, nix-instantiate could not
// be found or started, or its output could not be collected. Retrying
// the whole build is the only recovery.
type InstantiateError struct {
	Err error
}

func (e *InstantiateError) Error() string { return "running nix-instantiate: " + e.Err.Error() }

func (e *InstantiateError) Unwrap() error { return e.Err }

// RealizeError is a failure of phase 2. Evaluation succeeded; building
// the evaluated derivation did not.
type RealizeError struct {
	// Derivation is the primary_gc_rooted derivation being realized.
	Derivation nix.StorePath

	Err error
}

func (e *RealizeError) Error() string {
	return fmt.Sprintf("realizing %s: %v", e.Derivation, e.Err)
}

func (e *RealizeError) Unwrap() error { return e.Err }

// WorkerError is an unexpected panic in the goroutine classifying
// stderr. Value is what the goroutine panicked with.
type WorkerError struct {
	Value any
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("stderr classification failed: %v", e.Value)
}

// Unwrap returns Value when it is an error.
func (e *WorkerError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// InvariantError describes a break in the contract between the builder
// and its instrumentation script. It is never returned: the builder
// panics with it, because carrying on would report a wrong set of
// sources to watch.
type InvariantError struct {
	Message string

	// Transcript is the stderr seen so far, when relevant.
	Transcript [][]byte
}

func (e *InvariantError) Error() string {
	if len(e.Transcript) == 0 {
		return "internal invariant violated: " + e.Message
	}
	lines := make([]string, len(e.Transcript))
	for i, line := range e.Transcript {
		lines[i] = string(line)
	}
	return "internal invariant violated: " + e.Message + "\nnix-instantiate stderr:\n" + strings.Join(lines, "\n")
}

// violated panics with an InvariantError.
func violated(format string, args ...any) {
	panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
}
