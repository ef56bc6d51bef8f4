// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildlog keeps the transcript of the most recent failed build
// of each root file, so a watcher can show why a shell is stale without
// rebuilding it.
//
// Records are CBOR (see lib/codec) wrapped in a small envelope naming
// the compression applied to the payload. Files are named by the
// blake3 name hash of the root path (see lib/cas), so every root has at
// most one record and roots with awkward characters need no escaping.
package buildlog
