// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for envwatch packages.
//
// [FakeBinary] writes an executable shell script standing in for a Nix
// binary. Tests that exercise process handling point the code under
// test at a directory of fakes instead of a real Nix installation.
//
// [RequirePanic] runs a function that must panic and returns the
// recovered value, for asserting on internal invariant violations.
//
// [UniqueID] generates distinct content for tests that share a store.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no envwatch-internal dependencies.
package testutil
