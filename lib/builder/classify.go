// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"regexp"
	"unicode/utf8"
)

// EventKind distinguishes the lines the builder understands.
type EventKind uint8

const (
	// TextLine is any line that is not one of the others, including
	// lines that are not valid UTF-8. It is passed through untouched.
	TextLine EventKind = iota

	// SourcePath reports a file the evaluator read or copied.
	SourcePath

	// PrimaryOutput reports the derivation of the primary attribute.
	PrimaryOutput

	// PrimaryGCRootedOutput reports the derivation of the
	// primary_gc_rooted attribute.
	PrimaryGCRootedOutput
)

func (k EventKind) String() string {
	switch k {
	case TextLine:
		return "text"
	case SourcePath:
		return "source"
	case PrimaryOutput:
		return "primary"
	case PrimaryGCRootedOutput:
		return "primary_gc_rooted"
	default:
		return "unknown"
	}
}

// Event is one classified line of nix-instantiate stderr.
type Event struct {
	Kind EventKind

	// Path is the source file for SourcePath and the derivation for
	// the output kinds, exactly as nix printed it. Empty for TextLine.
	Path string

	// Line is the raw line the event came from.
	Line []byte
}

// Patterns for the stderr lines that carry information. Evaluating-file
// lines are by far the most frequent, so they are tried first.
var (
	evaluatingFilePattern = regexp.MustCompile(`^evaluating file '(?P<source>.*)'$`)
	copiedSourcePattern   = regexp.MustCompile(`^copied source '(?P<source>.*)' -> '(?:.*)'$`)
	readPattern           = regexp.MustCompile(`^trace: read: '(?P<source>.*)'$`)
	attributePattern      = regexp.MustCompile(`^trace: attribute: '(?P<attribute>.*)' -> '(?P<drv>/nix/store/.*)'$`)
)

// ClassifyLine turns one stderr line into an [Event]. Lines that are
// not valid UTF-8 cannot be matched and become TextLine events carrying
// the original bytes.
//
// An attribute trace naming an attribute other than those in
// [AttrNames] means the instrumentation script and this package have
// drifted apart; ClassifyLine panics with an [*InvariantError].
func ClassifyLine(line []byte) Event {
	if !utf8.Valid(line) {
		return Event{Kind: TextLine, Line: line}
	}

	for _, pattern := range []*regexp.Regexp{evaluatingFilePattern, copiedSourcePattern, readPattern} {
		if match := pattern.FindSubmatch(line); match != nil {
			return Event{Kind: SourcePath, Path: string(match[pattern.SubexpIndex("source")]), Line: line}
		}
	}

	if match := attributePattern.FindSubmatch(line); match != nil {
		attribute := string(match[attributePattern.SubexpIndex("attribute")])
		derivation := string(match[attributePattern.SubexpIndex("drv")])
		names := AttrNames()
		switch attribute {
		case names.Primary:
			return Event{Kind: PrimaryOutput, Path: derivation, Line: line}
		case names.PrimaryGCRooted:
			return Event{Kind: PrimaryGCRootedOutput, Path: derivation, Line: line}
		default:
			violated("instrumentation trace was %q -> %q: unknown attribute %q", attribute, derivation, attribute)
		}
	}

	return Event{Kind: TextLine, Line: line}
}
