// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package cas

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/envwatch/envwatch/lib/testutil"
)

func TestPut_WritesContent(t *testing.T) {
	t.Parallel()

	directory := filepath.Join(t.TempDir(), "cas")
	store, err := Open(directory)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	content := []byte(testutil.UniqueID("instrumentation script"))
	path, err := store.Put(content)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if filepath.Dir(path) != directory {
		t.Errorf("Put path %q not inside %q", path, directory)
	}
	if filepath.Base(path) != HashBlob(content).String() {
		t.Errorf("Put path %q not named by content digest", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("stored content = %q, want %q", got, content)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm()&0o222 != 0 {
		t.Errorf("stored file is writable: %v", info.Mode())
	}
}

func TestPut_Idempotent(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	store, err := Open(directory)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	first, err := store.Put([]byte("same"))
	if err != nil {
		t.Fatalf("first Put: %v", err)
	}
	second, err := store.Put([]byte("same"))
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if first != second {
		t.Errorf("same content stored at %q and %q", first, second)
	}

	other, err := store.Put([]byte("different"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if other == first {
		t.Error("different content stored at the same path")
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("store has %d entries, want 2 (temporary files left behind?)", len(entries))
	}
}

func TestPut_Concurrent(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	content := []byte("concurrent content")
	var waitGroup sync.WaitGroup
	paths := make([]string, 8)
	errs := make([]error, 8)
	for i := range paths {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			paths[i], errs[i] = store.Put(content)
		}()
	}
	waitGroup.Wait()

	for i := range paths {
		if errs[i] != nil {
			t.Fatalf("Put %d: %v", i, errs[i])
		}
		if paths[i] != paths[0] {
			t.Errorf("Put %d returned %q, want %q", i, paths[i], paths[0])
		}
	}
}

func TestOpen_RejectsEmptyDirectory(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestHashDomainsAreDistinct(t *testing.T) {
	t.Parallel()

	if HashBlob([]byte("/etc/shell.nix")) == HashName("/etc/shell.nix") {
		t.Error("blob and name domains produced the same digest")
	}
	if HashBlob([]byte("x")) != HashBlob([]byte("x")) {
		t.Error("HashBlob is not deterministic")
	}
	if len(HashName("x").String()) != 64 {
		t.Errorf("hex digest length = %d, want 64", len(HashName("x").String()))
	}
}
