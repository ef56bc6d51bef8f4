// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"strings"

	"github.com/envwatch/envwatch/lib/nix"
)

// Report status values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Report is the serializable form of a build outcome, written as JSON
// or CBOR for the watcher daemon and for scripts.
type Report struct {
	// Root is the root file that was built.
	Root string `json:"root"`

	// Status is StatusSuccess or StatusFailure.
	Status string `json:"status"`

	// Sources lists the files to watch, in discovery order.
	Sources []string `json:"sources"`

	// Path is the realized environment. Success only.
	Path nix.StorePath `json:"path,omitempty"`

	// Outputs pairs each slot's derivation with its realized path.
	// Success only.
	Outputs *NamedOutputs[OutputReport] `json:"outputs,omitempty"`

	// ExitStatus is how nix-instantiate exited. Failure only.
	ExitStatus *nix.ExitStatus `json:"exit_status,omitempty"`

	// Transcript is nix-instantiate's stderr. Failure only. Bytes that
	// are not valid UTF-8 are replaced with U+FFFD; the outcome itself
	// keeps the original bytes.
	Transcript []string `json:"transcript,omitempty"`
}

// OutputReport is one slot of a successful build.
type OutputReport struct {
	Derivation nix.StorePath `json:"derivation"`
	Path       nix.StorePath `json:"path"`
}

// NewReport summarizes outcome for root.
func NewReport(root string, outcome *Outcome[Artifact]) Report {
	report := Report{Root: root, Sources: outcome.Sources()}
	if report.Sources == nil {
		report.Sources = []string{}
	}

	if outcome.Success != nil {
		artifact := outcome.Success.Artifact
		outputs := Map(Zip(artifact.Derivations, artifact.Outputs), func(slot Pair[nix.StorePath, nix.StorePath]) OutputReport {
			return OutputReport{Derivation: slot.First, Path: slot.Second}
		})
		report.Status = StatusSuccess
		report.Path = artifact.Path
		report.Outputs = &outputs
		return report
	}

	return NewFailureReport(root, report.Sources, outcome.Failure.Status, outcome.Failure.Transcript)
}

// NewFailureReport summarizes a failed evaluation of root. It also
// serves failures read back from the build log archive.
func NewFailureReport(root string, sources []string, status nix.ExitStatus, transcript [][]byte) Report {
	if sources == nil {
		sources = []string{}
	}
	return Report{
		Root:       root,
		Status:     StatusFailure,
		Sources:    sources,
		ExitStatus: &status,
		Transcript: TranscriptText(transcript),
	}
}

// TranscriptText converts transcript lines to strings for display.
func TranscriptText(transcript [][]byte) []string {
	lines := make([]string, len(transcript))
	for i, line := range transcript {
		lines[i] = strings.ToValidUTF8(string(line), "�")
	}
	return lines
}
