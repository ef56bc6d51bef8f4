// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"fmt"

	"github.com/envwatch/envwatch/lib/nix"
)

// Diagnostics is the fold of one phase-1 stderr stream.
type Diagnostics struct {
	// Sources lists every file the evaluator read or copied, in the
	// order nix reported them. Repeats are kept.
	Sources []string

	// Outputs holds each attribute's derivation once its trace line
	// has been seen, nil before.
	Outputs NamedOutputs[*nix.StorePath]

	// Passthrough holds the TextLine lines only: nix output that is
	// not instrumentation.
	Passthrough [][]byte

	// Transcript holds every line, classified or not, in emission
	// order. This is what a user sees when the build fails.
	Transcript [][]byte
}

// ParseDiagnostics classifies and folds a complete stderr capture, one
// non-empty line at a time.
func ParseDiagnostics(stderr []byte) *Diagnostics {
	diagnostics := &Diagnostics{}
	for _, line := range nix.SplitLines(stderr) {
		diagnostics.AddLine(line)
	}
	return diagnostics
}

// AddLine classifies line and folds it. An [*InvariantError] raised by
// either step carries the transcript up to and including line.
func (d *Diagnostics) AddLine(line []byte) {
	d.Transcript = append(d.Transcript, line)
	defer d.attachTranscript()
	d.fold(ClassifyLine(line))
}

// Add folds one event. Each output attribute may be seen once; a second
// trace for the same attribute panics with an [*InvariantError].
func (d *Diagnostics) Add(event Event) {
	d.Transcript = append(d.Transcript, event.Line)
	defer d.attachTranscript()
	d.fold(event)
}

func (d *Diagnostics) attachTranscript() {
	recovered := recover()
	if recovered == nil {
		return
	}
	if invariant, ok := recovered.(*InvariantError); ok && invariant.Transcript == nil {
		invariant.Transcript = d.Transcript
	}
	panic(recovered)
}

func (d *Diagnostics) fold(event Event) {
	names := AttrNames()
	switch event.Kind {
	case SourcePath:
		d.Sources = append(d.Sources, event.Path)
	case PrimaryOutput:
		setOnce(&d.Outputs.Primary, names.Primary, event.Path)
	case PrimaryGCRootedOutput:
		setOnce(&d.Outputs.PrimaryGCRooted, names.PrimaryGCRooted, event.Path)
	case TextLine:
		d.Passthrough = append(d.Passthrough, event.Line)
	}
}

func setOnce(slot **nix.StorePath, attribute, derivation string) {
	if *slot != nil {
		violated("attribute %q traced a second time: first %q, then %q", attribute, **slot, derivation)
	}
	path := nix.StorePath(derivation)
	*slot = &path
}

// requireOutputs returns both derivations, panicking with an
// [*InvariantError] naming the first missing attribute.
func (d *Diagnostics) requireOutputs() NamedOutputs[nix.StorePath] {
	outputs, err := MapErr(Zip(AttrNames(), d.Outputs), func(slot Pair[string, *nix.StorePath]) (nix.StorePath, error) {
		if slot.Second == nil {
			return "", &InvariantError{
				Message:    fmt.Sprintf("required attribute %q was never traced", slot.First),
				Transcript: d.Transcript,
			}
		}
		return *slot.Second, nil
	})
	if err != nil {
		panic(err)
	}
	return outputs
}
