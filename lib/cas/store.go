// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package cas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store is a directory of files named by the digest of their content.
// Files are written once, atomically, and made read-only. Store is safe
// for concurrent use, including by several processes sharing the
// directory.
type Store struct {
	directory string
}

// Open returns a store rooted at directory, creating it if needed.
func Open(directory string) (*Store, error) {
	if directory == "" {
		return nil, errors.New("cas: store directory is empty")
	}
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating content store %s: %w", directory, err)
	}
	return &Store{directory: directory}, nil
}

// Path returns where data would be stored, without writing it.
func (s *Store) Path(data []byte) string {
	return filepath.Join(s.directory, HashBlob(data).String())
}

// Put stores data and returns the path of the file holding it. When a
// file with the same address already exists it is reused.
func (s *Store) Put(data []byte) (string, error) {
	path := s.Path(data)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("checking content store entry %s: %w", path, err)
	}

	temporary, err := os.CreateTemp(s.directory, ".put-*")
	if err != nil {
		return "", fmt.Errorf("creating content store entry: %w", err)
	}
	temporaryPath := temporary.Name()
	defer os.Remove(temporaryPath)

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return "", fmt.Errorf("writing content store entry: %w", err)
	}
	if err := temporary.Chmod(0o444); err != nil {
		temporary.Close()
		return "", fmt.Errorf("making content store entry read-only: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return "", fmt.Errorf("closing content store entry: %w", err)
	}

	// Concurrent writers of the same content rename identical bytes
	// over each other, so the last rename winning is harmless.
	if err := os.Rename(temporaryPath, path); err != nil {
		return "", fmt.Errorf("installing content store entry %s: %w", path, err)
	}
	return path, nil
}
