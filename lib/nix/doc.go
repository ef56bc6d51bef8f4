// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package nix provides typed access to the Nix CLI binaries envwatch
// drives and to the store objects they produce.
//
// Binary resolution follows the Determinate Nix installation pattern:
// an explicit directory when configured, otherwise PATH first, then
// /nix/var/nix/profiles/default/bin/.
//
// Key exports:
//
//   - [FindBinary] and [Binaries] -- locate nix-instantiate and nix-store
//   - [StorePath], [ParseStorePath], [ParseStorePaths] -- validated
//     store path handles and the decoder for line-oriented stdout
//   - [GCRoot] -- an indirect garbage-collection root anchored in a
//     temporary directory, released or promoted by its owner
//   - [StoreRealizer] -- realizes one derivation via nix-store --realise
//   - [ExitStatus] -- the exit status of a finished nix process
//   - [CommandError] -- a failed nix invocation with its stderr
package nix
