// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package nix

import (
	"context"
	"fmt"
)

// StoreRealizer builds one derivation with nix-store --realise and pins
// the result with a fresh indirect GC root.
type StoreRealizer struct {
	// Binaries locates nix-store.
	Binaries Binaries

	// RootDirectory is the parent for the result's anchor directory.
	// Empty means the system temporary directory.
	RootDirectory string
}

// Realize builds derivation and returns its realized output path along
// with the root that keeps it alive. The caller owns the root.
//
// With --add-root, nix-store prints the root's location instead of the
// output path, so the output is read back from the root symlink.
func (r StoreRealizer) Realize(ctx context.Context, derivation StorePath) (StorePath, *GCRoot, error) {
	if !derivation.IsDerivation() {
		return "", nil, fmt.Errorf("realizing %s: not a derivation", derivation)
	}
	root, err := NewGCRoot(r.RootDirectory)
	if err != nil {
		return "", nil, err
	}

	if _, err := r.Binaries.RunStore(ctx, "--realise", string(derivation), "--add-root", root.Link(), "--indirect"); err != nil {
		_ = root.Release()
		return "", nil, err
	}

	realized, err := root.Target()
	if err != nil {
		_ = root.Release()
		return "", nil, fmt.Errorf("realizing %s: %w", derivation, err)
	}
	return realized, root, nil
}
