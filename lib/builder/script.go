// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import _ "embed"

// instrumentationScript wraps the user's expression; see its header for
// the trace lines it emits.
//
//go:embed logged-evaluation.nix
var instrumentationScript []byte
