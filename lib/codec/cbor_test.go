// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type sampleRecord struct {
	Root    string   `json:"root"`
	Sources []string `json:"sources,omitempty"`
	Code    int      `json:"code"`
}

func TestMarshalDeterministic(t *testing.T) {
	record := sampleRecord{Root: "/src/shell.nix", Sources: []string{"/src/a.nix"}, Code: 1}

	first, err := Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("Marshal not deterministic: %x vs %x", first, second)
	}

	var decoded sampleRecord
	if err := Unmarshal(first, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Root != record.Root || decoded.Code != record.Code || len(decoded.Sources) != 1 {
		t.Errorf("decoded = %+v, want %+v", decoded, record)
	}
}

func TestJSONTagFallback(t *testing.T) {
	data, err := Marshal(sampleRecord{Root: "/src/shell.nix"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]any
	if err := Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if fields["root"] != "/src/shell.nix" {
		t.Errorf("fields %v do not use the json field name", fields)
	}
	if _, ok := fields["sources"]; ok {
		t.Errorf("fields %v include omitted empty field", fields)
	}
}

func TestAnyMapsDecodeWithStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"status": "failure"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded.(map[string]any); !ok {
		t.Errorf("decoded %T, want map[string]any", decoded)
	}
}

func TestNewEncoder(t *testing.T) {
	var buffer bytes.Buffer
	if err := NewEncoder(&buffer).Encode(sampleRecord{Root: "x"}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	direct, err := Marshal(sampleRecord{Root: "x"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(buffer.Bytes(), direct) {
		t.Error("stream encoding differs from Marshal")
	}
}
