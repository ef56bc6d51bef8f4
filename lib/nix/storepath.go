// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package nix

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// StoreDir is the standard Nix store root directory.
const StoreDir = "/nix/store"

// nixStorePrefix is StoreDir with its trailing separator.
const nixStorePrefix = StoreDir + "/"

// StorePath names a top-level object in the Nix store, for example
// "/nix/store/q3ngidzvincycjjvlilf1z6vj1w4wnas-shell.drv". It is a
// handle: the object it names may not have been realized yet.
type StorePath string

// ParseStorePath validates that path names a top-level store object.
func ParseStorePath(path string) (StorePath, error) {
	if !strings.HasPrefix(path, nixStorePrefix) {
		return "", fmt.Errorf("path %q is not under %s/", path, StoreDir)
	}
	entry := path[len(nixStorePrefix):]
	if entry == "" {
		return "", fmt.Errorf("path %q has no store entry name", path)
	}
	if strings.IndexByte(entry, '/') != -1 {
		return "", fmt.Errorf("path %q is inside a store object, not a store object", path)
	}
	return StorePath(path), nil
}

// ParseStorePaths decodes line-oriented stdout of a nix command into
// store paths, in order. Commands run with --add-root print the root's
// symlink instead of the store path; such lines are resolved through
// the link. Blank lines are skipped; any other line that is not a store
// path is an error.
func ParseStorePaths(output []byte) ([]StorePath, error) {
	var paths []StorePath
	for _, line := range SplitLines(output) {
		trimmed := strings.TrimSpace(string(line))
		if trimmed == "" {
			continue
		}
		path, err := ParseStorePath(trimmed)
		if err != nil {
			target, linkErr := os.Readlink(trimmed)
			if linkErr != nil {
				return nil, err
			}
			if path, err = ParseStorePath(target); err != nil {
				return nil, fmt.Errorf("root %s: %w", trimmed, err)
			}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SplitLines splits nix process output on newlines, dropping empty
// lines. The returned slices alias output.
func SplitLines(output []byte) [][]byte {
	var lines [][]byte
	for _, line := range bytes.Split(output, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// String returns the path as a string.
func (p StorePath) String() string { return string(p) }

// IsDerivation reports whether the path names a .drv file.
func (p StorePath) IsDerivation() bool {
	return strings.HasSuffix(string(p), ".drv")
}
