// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package nix

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// ExitStatus is how a nix process finished.
type ExitStatus struct {
	// Code is the exit code, or -1 when the process was killed.
	Code int `json:"code"`

	// Signal is the signal that killed the process, or zero.
	Signal syscall.Signal `json:"signal,omitempty"`
}

// ExitStatusOf extracts the status of a finished process.
func ExitStatusOf(state *os.ProcessState) ExitStatus {
	status := ExitStatus{Code: state.ExitCode()}
	if waitStatus, ok := state.Sys().(syscall.WaitStatus); ok && waitStatus.Signaled() {
		status.Signal = waitStatus.Signal()
	}
	return status
}

// Success reports whether the process exited with code zero.
func (s ExitStatus) Success() bool { return s.Code == 0 && s.Signal == 0 }

func (s ExitStatus) String() string {
	if s.Signal != 0 {
		name := unix.SignalName(s.Signal)
		if name == "" {
			name = s.Signal.String()
		}
		return "killed by " + name
	}
	return fmt.Sprintf("exit status %d", s.Code)
}
