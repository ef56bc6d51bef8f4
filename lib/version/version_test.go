// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, Version+" (") {
		t.Errorf("Info() = %q, want version prefix %q", info, Version)
	}
	if !strings.Contains(info, GitCommit) {
		t.Errorf("Info() = %q lacks commit %q", info, GitCommit)
	}
}

func TestFull(t *testing.T) {
	full := Full("")
	if !strings.Contains(full, runtime.Version()) {
		t.Errorf("Full() = %q lacks Go version", full)
	}
	if strings.Contains(full, "Runtime closure") {
		t.Errorf("Full(\"\") = %q mentions a closure", full)
	}

	closure := "/nix/store/r7a5ws5wv1hqr0lk1j1zwbnlz9kqlnqk-envwatch-runtime"
	if !strings.Contains(Full(closure), "Runtime closure: "+closure) {
		t.Errorf("Full(closure) = %q lacks the closure", Full(closure))
	}
}
