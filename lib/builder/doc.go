// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package builder builds a project's Nix shell expression and reports
// every file the evaluation read, even when the build fails. The
// watcher daemon uses the reported sources to decide which files to
// watch for rebuilds.
//
// A build has two phases. Phase 1 runs nix-instantiate at maximum
// verbosity on an instrumentation wrapper ([instrumentationScript])
// instead of the user's file directly. The wrapper traces every file it
// reads and the derivation paths of its two named outputs, primary and
// primary_gc_rooted, on stderr. Phase 2 realizes the primary_gc_rooted
// derivation.
//
// Stderr is classified line by line ([ClassifyLine]) into [Event]
// values and folded into [Diagnostics]. A non-zero exit from phase 1 is
// not an error: it is an [Outcome] whose Failure carries the exit
// status, the full transcript, and the sources read before the failure.
//
// The instrumentation script and this package form a closed contract.
// When they disagree (an unknown or repeated attribute, a missing
// attribute on success, no derivations printed on success), the
// builder panics with an [*InvariantError] rather than report a wrong
// watch set. Recoverable failures are returned as [*InstantiateError],
// [*RealizeError], or [*WorkerError].
package builder
