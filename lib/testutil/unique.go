// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var contentSequence atomic.Uint64

// UniqueID appends a process-wide sequence number to prefix. Content
// built from it hashes to an address no other test in the binary
// produces, so a CAS test never finds its entry already present.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s#%d", prefix, contentSequence.Add(1))
}
