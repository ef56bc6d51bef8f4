// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package process turns the error returned by a command's run function
// into an exit status. Errors that carry their own status are silent;
// anything else is printed once to stderr, before or without the
// structured logger.
package process
