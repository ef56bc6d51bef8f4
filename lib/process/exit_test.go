// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

type codedError struct{ code int }

func (e *codedError) Error() string { return fmt.Sprintf("exit %d", e.code) }
func (e *codedError) ExitCode() int { return e.code }

func TestReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantOutput string
	}{
		{name: "nil", err: nil, wantCode: 0},
		{name: "plain", err: errors.New("loading config: no such file"), wantCode: 1,
			wantOutput: "envwatch-build: error: loading config: no such file\n"},
		{name: "coded", err: &codedError{code: 2}, wantCode: 2},
		{name: "wrapped coded", err: fmt.Errorf("build: %w", &codedError{code: 1}), wantCode: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var output bytes.Buffer
			if code := Report(&output, "envwatch-build", tt.err); code != tt.wantCode {
				t.Errorf("Report = %d, want %d", code, tt.wantCode)
			}
			if output.String() != tt.wantOutput {
				t.Errorf("output %q, want %q", output.String(), tt.wantOutput)
			}
		})
	}
}
