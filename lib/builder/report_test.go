// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/envwatch/envwatch/lib/codec"
	"github.com/envwatch/envwatch/lib/nix"
)

func successOutcome() *Outcome[Artifact] {
	return &Outcome[Artifact]{Success: &Success[Artifact]{
		Artifact: Artifact{
			Path:        "/nix/store/zzz-shell",
			Outputs:     NamedOutputs[nix.StorePath]{Primary: "/nix/store/zzz-shell", PrimaryGCRooted: "/nix/store/zzz-shell"},
			Derivations: NamedOutputs[nix.StorePath]{Primary: "/nix/store/bbb.drv", PrimaryGCRooted: "/nix/store/ccc.drv"},
		},
		Sources: []string{"/etc/foo.nix", "/etc/bar.nix"},
	}}
}

func TestNewReport_Success(t *testing.T) {
	t.Parallel()

	report := NewReport("/etc/foo.nix", successOutcome())
	if report.Status != StatusSuccess || report.Path != "/nix/store/zzz-shell" {
		t.Errorf("report = %+v", report)
	}
	if report.Outputs == nil {
		t.Fatal("Outputs missing")
	}
	want := OutputReport{Derivation: "/nix/store/ccc.drv", Path: "/nix/store/zzz-shell"}
	if report.Outputs.PrimaryGCRooted != want {
		t.Errorf("PrimaryGCRooted = %+v, want %+v", report.Outputs.PrimaryGCRooted, want)
	}
	if report.Outputs.Primary.Derivation != "/nix/store/bbb.drv" {
		t.Errorf("Primary = %+v", report.Outputs.Primary)
	}
	if report.ExitStatus != nil || report.Transcript != nil {
		t.Error("success report carries failure fields")
	}
}

func TestNewReport_Failure(t *testing.T) {
	t.Parallel()

	outcome := &Outcome[Artifact]{Failure: &Failure{
		Status:     nix.ExitStatus{Code: 1},
		Transcript: [][]byte{[]byte("error: oops"), []byte("bad \xff byte")},
	}}
	report := NewReport("/etc/foo.nix", outcome)

	if report.Status != StatusFailure || report.ExitStatus == nil || report.ExitStatus.Code != 1 {
		t.Errorf("report = %+v", report)
	}
	if !reflect.DeepEqual(report.Transcript, []string{"error: oops", "bad � byte"}) {
		t.Errorf("Transcript = %q", report.Transcript)
	}
	if report.Sources == nil || len(report.Sources) != 0 {
		t.Errorf("Sources = %#v, want empty non-nil", report.Sources)
	}
}

func TestReport_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(NewReport("/etc/foo.nix", successOutcome()))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`"status":"success"`,
		`"primary_gc_rooted":{"derivation":"/nix/store/ccc.drv","path":"/nix/store/zzz-shell"}`,
		`"sources":["/etc/foo.nix","/etc/bar.nix"]`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("JSON %s lacks %s", text, want)
		}
	}
	if strings.Contains(text, "exit_status") || strings.Contains(text, "transcript") {
		t.Errorf("JSON %s carries failure fields", text)
	}
}

func TestReport_CBOR(t *testing.T) {
	t.Parallel()

	report := NewReport("/etc/foo.nix", successOutcome())
	data, err := codec.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded Report
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, report) {
		t.Errorf("decoded = %+v, want %+v", decoded, report)
	}
}
