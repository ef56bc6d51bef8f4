// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package buildlog

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
)

func TestCompressionString(t *testing.T) {
	tests := []struct {
		compression Compression
		want        string
	}{
		{CompressionNone, "none"},
		{CompressionLZ4, "lz4"},
		{CompressionZstd, "zstd"},
		{Compression(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.compression.String(); got != tt.want {
				t.Errorf("Compression(%d).String() = %q, want %q", tt.compression, got, tt.want)
			}
		})
	}
}

func TestParseCompression(t *testing.T) {
	for _, name := range []string{"none", "lz4", "zstd"} {
		t.Run(name, func(t *testing.T) {
			compression, err := ParseCompression(name)
			if err != nil {
				t.Fatalf("ParseCompression(%q) failed: %v", name, err)
			}
			if compression.String() != name {
				t.Errorf("roundtrip: ParseCompression(%q).String() = %q", name, compression.String())
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseCompression("gzip"); err == nil {
			t.Error(`ParseCompression("gzip") should fail`)
		}
	})
}

func TestCompressRoundTrip(t *testing.T) {
	transcript := []byte(strings.Repeat("evaluating file '/nix/store/zqxha3ax0w771jf25qdblakka83660gr-source/lib/default.nix'\n", 200))

	for _, algorithm := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(algorithm.String(), func(t *testing.T) {
			payload, used, err := compress(transcript, algorithm)
			if err != nil {
				t.Fatalf("compress: %v", err)
			}
			if used != algorithm {
				t.Errorf("used %s, want %s", used, algorithm)
			}
			if algorithm != CompressionNone && len(payload) >= len(transcript) {
				t.Errorf("payload %d bytes, not smaller than %d", len(payload), len(transcript))
			}
			restored, err := decompress(payload, used, len(transcript))
			if err != nil {
				t.Fatalf("decompress: %v", err)
			}
			if !bytes.Equal(restored, transcript) {
				t.Error("round trip changed the data")
			}
		})
	}
}

func TestCompressIncompressibleFallsBackToNone(t *testing.T) {
	random := make([]byte, 4096)
	if _, err := rand.Read(random); err != nil {
		t.Fatal(err)
	}

	for _, algorithm := range []Compression{CompressionLZ4, CompressionZstd} {
		t.Run(algorithm.String(), func(t *testing.T) {
			payload, used, err := compress(random, algorithm)
			if err != nil {
				t.Fatalf("compress: %v", err)
			}
			if used != CompressionNone || !bytes.Equal(payload, random) {
				t.Errorf("random data stored with %s", used)
			}
		})
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	if _, err := decompress([]byte("abc"), CompressionNone, 4); err == nil {
		t.Error("expected size mismatch error")
	}
	if _, err := decompress([]byte("abc"), Compression(9), 3); err == nil {
		t.Error("expected unsupported compression error")
	}
}
