// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package nix

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// determinateProfileBin is where Determinate Nix installs its binaries.
// This location is outside PATH by default, so we check it explicitly
// after the PATH lookup fails.
const determinateProfileBin = "/nix/var/nix/profiles/default/bin"

// FindBinary resolves a Nix binary by name (e.g., "nix-instantiate",
// "nix-store"), checking PATH first and then the standard Determinate
// Nix installation directory. Returns the absolute path to the binary.
func FindBinary(name string) (string, error) {
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	determinatePath := filepath.Join(determinateProfileBin, name)
	if _, err := os.Stat(determinatePath); err == nil {
		return determinatePath, nil
	}

	return "", fmt.Errorf("%s not found on PATH or at %s (is Nix installed?)", name, determinatePath)
}

// Binaries resolves Nix binaries either from a fixed directory or, when
// Directory is empty, through [FindBinary].
type Binaries struct {
	// Directory holds the nix binaries. Empty means look them up.
	Directory string
}

// Resolve returns the absolute path of the named binary.
func (b Binaries) Resolve(name string) (string, error) {
	if b.Directory == "" {
		return FindBinary(name)
	}
	path := filepath.Join(b.Directory, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%s not found in %s: %w", name, b.Directory, err)
	}
	return path, nil
}

// Instantiate returns the path of nix-instantiate.
func (b Binaries) Instantiate() (string, error) { return b.Resolve("nix-instantiate") }

// RunStore executes "nix-store <args>" and returns its stdout. Stderr is
// captured and carried by the returned [*CommandError] on failure.
func (b Binaries) RunStore(ctx context.Context, args ...string) (string, error) {
	return b.run(ctx, "nix-store", args)
}

// run resolves the named binary, executes it with the given arguments,
// and returns stdout.
func (b Binaries) run(ctx context.Context, binaryName string, args []string) (string, error) {
	binaryPath, err := b.Resolve(binaryName)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, binaryPath, args...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", &CommandError{
			Command: binaryName + " " + strings.Join(args, " "),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return stdout.String(), nil
}

// CommandError is a failed nix invocation. Nix writes its actual error
// to stderr, so Error prefers that text over the generic exec error.
type CommandError struct {
	// Command is the binary name followed by its arguments.
	Command string

	// Stderr is the trimmed diagnostic output of the command.
	Stderr string

	// Err is the exec error (usually *exec.ExitError).
	Err error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s", e.Command, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
