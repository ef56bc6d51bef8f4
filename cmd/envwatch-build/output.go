// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/envwatch/envwatch/lib/builder"
	"github.com/envwatch/envwatch/lib/codec"
)

// outputFormat selects how the report is written.
type outputFormat int

const (
	formatText outputFormat = iota
	formatJSON
	formatCBOR
)

func parseFormat(name string) (outputFormat, error) {
	switch name {
	case "text":
		return formatText, nil
	case "json":
		return formatJSON, nil
	case "cbor":
		return formatCBOR, nil
	default:
		return 0, fmt.Errorf("unknown --format %q (want text, json or cbor)", name)
	}
}

func writeReport(w io.Writer, format outputFormat, report builder.Report) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case formatCBOR:
		return codec.NewEncoder(w).Encode(report)
	default:
		return renderText(w, report, isTerminal(w))
	}
}

// ANSI 256-color codes, as the rest of envwatch's terminal output.
var (
	colorSuccess = lipgloss.Color("42")
	colorFailure = lipgloss.Color("196")
	colorFaint   = lipgloss.Color("245")
	colorPath    = lipgloss.Color("39")
)

// renderText writes report for a human. Nix colors its own diagnostics;
// unless w is a terminal those escape sequences are stripped from the
// transcript.
func renderText(w io.Writer, report builder.Report, terminal bool) error {
	renderer := lipgloss.NewRenderer(w)
	heading := renderer.NewStyle().Bold(true)
	faint := renderer.NewStyle().Foreground(colorFaint)
	path := renderer.NewStyle().Foreground(colorPath)
	label := renderer.NewStyle().Width(len(builder.AttrNames().PrimaryGCRooted) + 2)

	var out strings.Builder
	if report.Status == builder.StatusSuccess {
		out.WriteString(heading.Foreground(colorSuccess).Render("✓ built "+report.Root) + "\n")
		out.WriteString("  " + label.Render("environment") + path.Render(string(report.Path)) + "\n")
		slots := builder.Zip(builder.AttrNames(), *report.Outputs)
		for _, slot := range []builder.Pair[string, builder.OutputReport]{slots.Primary, slots.PrimaryGCRooted} {
			out.WriteString("  " + label.Render(slot.First) + faint.Render(string(slot.Second.Derivation)) + "\n")
		}
	} else {
		out.WriteString(heading.Foreground(colorFailure).Render(
			fmt.Sprintf("✗ %s failed (%s)", report.Root, report.ExitStatus)) + "\n")
		for _, line := range report.Transcript {
			if !terminal {
				line = ansi.Strip(line)
			}
			out.WriteString("  " + line + "\n")
		}
	}

	out.WriteString(heading.Render(fmt.Sprintf("sources (%d)", len(report.Sources))) + "\n")
	for _, source := range report.Sources {
		out.WriteString("  " + faint.Render(source) + "\n")
	}

	_, err := io.WriteString(w, out.String())
	return err
}
