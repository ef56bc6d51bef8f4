// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads envwatch configuration.
//
// Configuration comes from a single file named by the --config flag or
// the ENVWATCH_CONFIG environment variable (see [Resolve]). There is no
// discovery and no per-field environment override: when neither names
// a file the built-in [Default] is used as is.
//
// Files are YAML. A file whose name ends in ".jsonc" is JSON with
// comments and trailing commas, normalized to plain JSON before
// decoding.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${ENVWATCH_ROOT}, and ${VAR:-default} patterns are expanded.
// Paths default to directories under paths.root, so relocating the root
// relocates everything that was not set explicitly.
//
// This package depends on no other envwatch packages.
package config
