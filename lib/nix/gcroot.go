// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package nix

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// GCRoot is an indirect garbage-collection root anchored in a private
// temporary directory. Nix records indirect roots by the location of
// their symlink, so the root is valid exactly as long as [GCRoot.Link]
// exists. Removing the directory invalidates the root.
//
// The value that created a GCRoot owns it. Owners call Release when the
// anchored paths are no longer needed, or Promote to hand the path to a
// durable root before releasing the temporary one.
type GCRoot struct {
	directory string

	mu       sync.Mutex
	released bool
}

// NewGCRoot creates a fresh anchor directory under parent. An empty
// parent means the system temporary directory.
func NewGCRoot(parent string) (*GCRoot, error) {
	directory, err := os.MkdirTemp(parent, "envwatch-gcroot-*")
	if err != nil {
		return nil, fmt.Errorf("creating gc root directory: %w", err)
	}
	return &GCRoot{directory: directory}, nil
}

// Directory returns the anchor directory.
func (r *GCRoot) Directory() string { return r.directory }

// Link returns the symlink location passed to nix as --add-root.
func (r *GCRoot) Link() string { return filepath.Join(r.directory, "result") }

// Target returns the store path the root's symlink points at.
func (r *GCRoot) Target() (StorePath, error) {
	target, err := os.Readlink(r.Link())
	if err != nil {
		return "", fmt.Errorf("reading gc root %s: %w", r.Link(), err)
	}
	return ParseStorePath(target)
}

// Released reports whether Release has been called.
func (r *GCRoot) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Release removes the anchor directory. Calling it more than once is
// harmless.
func (r *GCRoot) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil
	}
	r.released = true
	if err := os.RemoveAll(r.directory); err != nil {
		return fmt.Errorf("removing gc root directory %s: %w", r.directory, err)
	}
	return nil
}

// Promote registers the root's target as a durable indirect root at
// destination and then releases the temporary anchor. The target stays
// protected throughout: the durable root exists before the temporary
// one is removed.
func (r *GCRoot) Promote(ctx context.Context, binaries Binaries, destination string) error {
	if r.Released() {
		return fmt.Errorf("promoting gc root %s: already released", r.directory)
	}
	target, err := r.Target()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("creating directory for gc root %s: %w", destination, err)
	}
	if _, err := binaries.RunStore(ctx, "--add-root", destination, "--indirect", "--realise", string(target)); err != nil {
		return fmt.Errorf("promoting %s to %s: %w", target, destination, err)
	}
	return r.Release()
}
