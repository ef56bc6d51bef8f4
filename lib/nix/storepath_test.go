// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package nix

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseStorePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "derivation", path: "/nix/store/q3ngidzvincycjjvlilf1z6vj1w4wnas-lorri.drv"},
		{name: "output", path: "/nix/store/9krlzvny65gdc8s7kpb6lkx8cd02c25b-default-builder.sh"},
		{name: "short entry", path: "/nix/store/bbb"},
		{name: "inside object", path: "/nix/store/abc-env/bin/bash", wantErr: true},
		{name: "outside store", path: "/usr/bin/env", wantErr: true},
		{name: "store root", path: "/nix/store/", wantErr: true},
		{name: "store root without slash", path: "/nix/store", wantErr: true},
		{name: "empty", path: "", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseStorePath(testCase.path)
			if testCase.wantErr {
				if err == nil {
					t.Fatalf("ParseStorePath(%q) = %q, want error", testCase.path, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStorePath(%q): %v", testCase.path, err)
			}
			if got.String() != testCase.path {
				t.Errorf("ParseStorePath(%q) = %q", testCase.path, got)
			}
		})
	}
}

func TestParseStorePaths(t *testing.T) {
	t.Parallel()

	output := []byte("/nix/store/aaa-x.drv\n\n  \n/nix/store/bbb-y.drv\n")
	got, err := ParseStorePaths(output)
	if err != nil {
		t.Fatalf("ParseStorePaths: %v", err)
	}
	want := []StorePath{"/nix/store/aaa-x.drv", "/nix/store/bbb-y.drv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseStorePaths = %v, want %v", got, want)
	}
}

func TestParseStorePathsEmpty(t *testing.T) {
	t.Parallel()

	got, err := ParseStorePaths(nil)
	if err != nil {
		t.Fatalf("ParseStorePaths(nil): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ParseStorePaths(nil) = %v, want empty", got)
	}
}

func TestParseStorePathsFollowsRootLinks(t *testing.T) {
	t.Parallel()

	link := filepath.Join(t.TempDir(), "result")
	if err := os.Symlink("/nix/store/aaa-x.drv", link); err != nil {
		t.Fatalf("Symlink: %v", err)
	}
	got, err := ParseStorePaths([]byte(link + "\n"))
	if err != nil {
		t.Fatalf("ParseStorePaths: %v", err)
	}
	if len(got) != 1 || got[0] != "/nix/store/aaa-x.drv" {
		t.Errorf("ParseStorePaths = %v", got)
	}
}

func TestParseStorePathsRejectsLinkOutsideStore(t *testing.T) {
	t.Parallel()

	link := filepath.Join(t.TempDir(), "result")
	if err := os.Symlink("/tmp/elsewhere", link); err != nil {
		t.Fatalf("Symlink: %v", err)
	}
	if _, err := ParseStorePaths([]byte(link + "\n")); err == nil {
		t.Fatal("expected error for link outside the store")
	}
}

func TestParseStorePathsRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := ParseStorePaths([]byte("/nix/store/aaa-x.drv\nwarning: something\n")); err == nil {
		t.Fatal("expected error for non-store-path line")
	}
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	got := SplitLines([]byte("one\n\ntwo\nthree"))
	want := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines = %q, want %q", got, want)
	}
}

func TestStorePathIsDerivation(t *testing.T) {
	t.Parallel()

	if !StorePath("/nix/store/q3ng-shell.drv").IsDerivation() {
		t.Error("IsDerivation = false for .drv path")
	}
	if StorePath("/nix/store/q3ng-shell").IsDerivation() {
		t.Error("IsDerivation = true for output path")
	}
}
