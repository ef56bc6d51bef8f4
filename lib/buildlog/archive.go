// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package buildlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/envwatch/envwatch/lib/cas"
	"github.com/envwatch/envwatch/lib/clock"
	"github.com/envwatch/envwatch/lib/codec"
	"github.com/envwatch/envwatch/lib/nix"
)

// ErrNoRecord is returned by [Archive.Read] for a root with no archived
// failure.
var ErrNoRecord = errors.New("no failure recorded")

// recordExtension is the suffix of record files.
const recordExtension = ".failure"

// maxRecordSize bounds the uncompressed size a record may claim.
const maxRecordSize = 64 << 20

// Record is one archived failed build.
type Record struct {
	// Root is the root file that failed to build.
	Root string `json:"root"`

	// RecordedAt is when the record was written.
	RecordedAt time.Time `json:"recorded_at"`

	// Status is how nix-instantiate exited.
	Status nix.ExitStatus `json:"status"`

	// Sources lists the files read before evaluation failed.
	Sources []string `json:"sources"`

	// Transcript is nix-instantiate's stderr, bytes unmodified.
	Transcript [][]byte `json:"transcript"`
}

// envelope is the on-disk form of a record.
type envelope struct {
	Compression Compression `json:"compression"`
	Size        int         `json:"size"`
	Payload     []byte      `json:"payload"`
}

// Archive stores failure records in one directory.
type Archive struct {
	directory   string
	compression Compression
	clock       clock.Clock
}

// Open returns an archive rooted at directory, creating it if needed.
// A nil clock means clock.Real().
func Open(directory string, compression Compression, archiveClock clock.Clock) (*Archive, error) {
	if directory == "" {
		return nil, errors.New("buildlog: directory is required")
	}
	if compression > CompressionZstd {
		return nil, fmt.Errorf("buildlog: unsupported compression %s", compression)
	}
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating build log directory: %w", err)
	}
	if archiveClock == nil {
		archiveClock = clock.Real()
	}
	return &Archive{directory: directory, compression: compression, clock: archiveClock}, nil
}

// Path returns the record file for root.
func (a *Archive) Path(root string) string {
	return filepath.Join(a.directory, cas.HashName(root).String()+recordExtension)
}

// Write archives a failure of root, replacing any earlier record, and
// returns the record file path. RecordedAt is set from the archive's
// clock.
func (a *Archive) Write(root string, status nix.ExitStatus, sources []string, transcript [][]byte) (string, error) {
	record := Record{
		Root:       root,
		RecordedAt: a.clock.Now().UTC(),
		Status:     status,
		Sources:    sources,
		Transcript: transcript,
	}
	encoded, err := codec.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encoding build log record: %w", err)
	}
	payload, used, err := compress(encoded, a.compression)
	if err != nil {
		return "", err
	}
	data, err := codec.Marshal(envelope{Compression: used, Size: len(encoded), Payload: payload})
	if err != nil {
		return "", fmt.Errorf("encoding build log envelope: %w", err)
	}

	path := a.Path(root)
	temporary, err := os.CreateTemp(a.directory, ".write-*")
	if err != nil {
		return "", fmt.Errorf("creating build log record: %w", err)
	}
	temporaryPath := temporary.Name()
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return "", fmt.Errorf("writing build log record: %w", err)
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return "", fmt.Errorf("writing build log record: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return "", fmt.Errorf("installing build log record: %w", err)
	}
	return path, nil
}

// Read returns the archived failure of root, or [ErrNoRecord].
func (a *Archive) Read(root string) (*Record, error) {
	data, err := os.ReadFile(a.Path(root))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("reading build log record: %w", err)
	}

	var wrapper envelope
	if err := codec.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("decoding build log envelope: %w", err)
	}
	if wrapper.Size < 0 || wrapper.Size > maxRecordSize {
		return nil, fmt.Errorf("build log record %s claims %d bytes (limit %d)", a.Path(root), wrapper.Size, maxRecordSize)
	}
	encoded, err := decompress(wrapper.Payload, wrapper.Compression, wrapper.Size)
	if err != nil {
		return nil, fmt.Errorf("decompressing build log record: %w", err)
	}
	var record Record
	if err := codec.Unmarshal(encoded, &record); err != nil {
		return nil, fmt.Errorf("decoding build log record: %w", err)
	}
	if record.Root != root {
		return nil, fmt.Errorf("build log record %s belongs to %q, not %q", a.Path(root), record.Root, root)
	}
	return &record, nil
}

// Remove deletes the record of root, if any. Called after a successful
// build so a stale failure is not shown.
func (a *Archive) Remove(root string) error {
	if err := os.Remove(a.Path(root)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing build log record: %w", err)
	}
	return nil
}
