// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// FakeBinary writes script as an executable named name in directory and
// returns its path. The script body is prefixed with "#!/bin/sh".
//
//	dir := t.TempDir()
//	testutil.FakeBinary(t, dir, "nix-store", `echo "$@" >&2; exit 1`)
func FakeBinary(t *testing.T, directory, name, script string) string {
	t.Helper()
	path := filepath.Join(directory, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("writing fake %s: %v", name, err)
	}
	return path
}

// RequirePanic calls function and returns the value it panicked with.
// Fails the test if function returns normally.
func RequirePanic(t *testing.T, function func()) (recovered any) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Fatalf("expected panic, function returned normally")
		}
	}()
	function()
	return nil
}
