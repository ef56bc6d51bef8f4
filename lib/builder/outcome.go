// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"github.com/envwatch/envwatch/lib/nix"
)

// Outcome is the result of a build that ran. Exactly one of Success and
// Failure is set.
type Outcome[T any] struct {
	Success *Success[T]
	Failure *Failure
}

// Succeeded reports whether the build succeeded.
func (o *Outcome[T]) Succeeded() bool { return o.Success != nil }

// Sources returns the files the evaluation read, whichever way the
// build went.
func (o *Outcome[T]) Sources() []string {
	if o.Success != nil {
		return o.Success.Sources
	}
	return o.Failure.Sources
}

// Close releases the success's GC root unless it has been promoted.
// Outcomes that failed hold no root. Close is safe to call repeatedly.
func (o *Outcome[T]) Close() error {
	if o.Success == nil || o.Success.Root == nil {
		return nil
	}
	return o.Success.Root.Release()
}

// Success is a build that completed.
type Success[T any] struct {
	// Artifact is what the phase produced.
	Artifact T

	// Sources lists the files the evaluation read, in order.
	Sources []string

	// Root keeps Artifact's store paths alive. The outcome owns it;
	// call [Outcome.Close] or promote it with [nix.GCRoot.Promote].
	Root *nix.GCRoot
}

// Failure is a build whose nix-instantiate exited unsuccessfully.
type Failure struct {
	// Status is how nix-instantiate exited.
	Status nix.ExitStatus

	// Transcript is nix-instantiate's complete stderr, one entry per
	// line in emission order, bytes unmodified.
	Transcript [][]byte

	// Sources lists the files read before evaluation failed. Watching
	// them lets the daemon rebuild once the user fixes the error.
	Sources []string
}

// Instantiation is what phase 1 produces.
type Instantiation struct {
	// Derivations holds each output attribute's derivation.
	Derivations NamedOutputs[nix.StorePath]

	// Produced lists the store paths nix-instantiate printed on stdout,
	// in order. Never empty.
	Produced []nix.StorePath
}

// Artifact is what a complete build produces.
type Artifact struct {
	// Path is the realized primary_gc_rooted output: the environment
	// the daemon hands to shells.
	Path nix.StorePath

	// Outputs holds the realized output of each slot. Only
	// primary_gc_rooted is built, and it is a superset of primary, so
	// both slots hold Path.
	Outputs NamedOutputs[nix.StorePath]

	// Derivations holds the derivation each slot was realized from.
	Derivations NamedOutputs[nix.StorePath]
}
