// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package cas is a content-addressable file store. [Store.Put] writes
// bytes to a file named by their BLAKE3 digest and returns the file's
// path, so identical content is written once and the path is stable
// across runs.
//
// The builder uses it to materialize the embedded instrumentation
// script where nix-instantiate can read it. Digests are computed with
// BLAKE3 keyed hashing under a fixed domain key; [HashName] hashes
// under a separate domain so names and blobs never collide.
//
// This package depends on no other envwatch packages.
package cas
