// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/envwatch/envwatch/lib/clock"
	"github.com/envwatch/envwatch/lib/nix"
)

// RunTimeClosure is the store path of the runtime closure the
// instrumentation script builds against. Release builds set it with
//
//	go build -ldflags "-X github.com/envwatch/envwatch/lib/builder.RunTimeClosure=/nix/store/..."
var RunTimeClosure = ""

// ContentStore materializes bytes as a file and returns its path.
// [*cas.Store] implements it.
type ContentStore interface {
	Put(data []byte) (string, error)
}

// Realizer builds one derivation and returns its output path and the
// root that keeps the output alive. [nix.StoreRealizer] implements it.
type Realizer interface {
	Realize(ctx context.Context, derivation nix.StorePath) (nix.StorePath, *nix.GCRoot, error)
}

// Options configures a [Builder].
type Options struct {
	// Binaries locates nix-instantiate.
	Binaries nix.Binaries

	// RunTimeClosure overrides the package-level RunTimeClosure.
	RunTimeClosure string

	// Store receives the instrumentation script. Required.
	Store ContentStore

	// Realizer runs phase 2. Defaults to a [nix.StoreRealizer] using
	// Binaries and RootDirectory.
	Realizer Realizer

	// RootDirectory is the parent of temporary GC-root directories.
	// Empty means the system temporary directory.
	RootDirectory string

	// Logger receives build progress. Nil discards.
	Logger *slog.Logger

	// Clock times the phases. Nil means clock.Real().
	Clock clock.Clock
}

// Builder runs instrumented builds. It holds no per-build state, so
// concurrent builds of different roots are independent.
type Builder struct {
	binaries       nix.Binaries
	runTimeClosure string
	store          ContentStore
	realizer       Realizer
	rootDirectory  string
	logger         *slog.Logger
	clock          clock.Clock

	// parseDiagnostics folds stderr. Replaced in tests to exercise
	// worker failure handling.
	parseDiagnostics func(stderr []byte) *Diagnostics
}

// New validates options and returns a Builder.
func New(options Options) (*Builder, error) {
	if options.Store == nil {
		return nil, errors.New("builder: content store is required")
	}
	runTimeClosure := options.RunTimeClosure
	if runTimeClosure == "" {
		runTimeClosure = RunTimeClosure
	}
	if runTimeClosure == "" {
		return nil, errors.New("builder: runtime closure is not configured (set nix.run_time_closure or link with -X .../builder.RunTimeClosure)")
	}

	realizer := options.Realizer
	if realizer == nil {
		realizer = nix.StoreRealizer{Binaries: options.Binaries, RootDirectory: options.RootDirectory}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	buildClock := options.Clock
	if buildClock == nil {
		buildClock = clock.Real()
	}

	return &Builder{
		binaries:         options.Binaries,
		runTimeClosure:   runTimeClosure,
		store:            options.Store,
		realizer:         realizer,
		rootDirectory:    options.RootDirectory,
		logger:           logger,
		clock:            buildClock,
		parseDiagnostics: ParseDiagnostics,
	}, nil
}

// Run builds the shell expression in root. It instantiates root through
// the instrumentation script and, when that succeeds, realizes the
// primary_gc_rooted derivation.
//
// A failed evaluation is a Failure outcome, not an error. The returned
// outcome owns a GC root on success; the caller must Close it or
// promote the root.
func (b *Builder) Run(ctx context.Context, root string) (*Outcome[Artifact], error) {
	instantiated, err := b.Instantiate(ctx, root)
	if err != nil {
		return nil, err
	}
	if instantiated.Failure != nil {
		return &Outcome[Artifact]{Failure: instantiated.Failure}, nil
	}

	// The phase-1 root protects the derivations until phase 2 has
	// pinned its own output.
	defer b.release(instantiated.Success.Root)

	derivations := instantiated.Success.Artifact.Derivations
	started := b.clock.Now()
	b.logger.Info("realizing shell", "root", root, "derivation", derivations.PrimaryGCRooted)

	realized, realizedRoot, err := b.realizer.Realize(ctx, derivations.PrimaryGCRooted)
	if err != nil {
		return nil, &RealizeError{Derivation: derivations.PrimaryGCRooted, Err: err}
	}

	b.logger.Info("shell realized",
		"root", root,
		"path", realized,
		"duration", b.clock.Now().Sub(started),
	)

	return &Outcome[Artifact]{Success: &Success[Artifact]{
		Artifact: Artifact{
			Path:        realized,
			Outputs:     Map(derivations, func(nix.StorePath) nix.StorePath { return realized }),
			Derivations: derivations,
		},
		Sources: instantiated.Success.Sources,
		Root:    realizedRoot,
	}}, nil
}

// diagnosticsResult is what the stderr goroutine hands back.
type diagnosticsResult struct {
	diagnostics *Diagnostics
	panicked    any
}

// Instantiate runs phase 1 alone. On success the outcome's root keeps
// the instantiated derivations alive until it is released.
func (b *Builder) Instantiate(ctx context.Context, root string) (*Outcome[Instantiation], error) {
	if root == "" {
		return nil, &InstantiateError{Err: errors.New("no root file given")}
	}

	script, err := b.store.Put(instrumentationScript)
	if err != nil {
		return nil, &InstantiateError{Err: fmt.Errorf("storing instrumentation script: %w", err)}
	}
	binary, err := b.binaries.Instantiate()
	if err != nil {
		return nil, &InstantiateError{Err: err}
	}
	gcRoot, err := nix.NewGCRoot(b.rootDirectory)
	if err != nil {
		return nil, &InstantiateError{Err: err}
	}
	keepRoot := false
	defer func() {
		if !keepRoot {
			b.release(gcRoot)
		}
	}()

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, binary, instantiateArgs(gcRoot.Link(), b.runTimeClosure, root, script)...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	b.logger.Debug("$ "+command.String(), "root", root)
	started := b.clock.Now()

	if err := command.Run(); err != nil {
		var exitError *exec.ExitError
		if !errors.As(err, &exitError) {
			return nil, &InstantiateError{Err: err}
		}
	}
	status := nix.ExitStatusOf(command.ProcessState)

	// Stderr is classified on its own goroutine while stdout is decoded
	// here. The two share nothing.
	results := make(chan diagnosticsResult, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				results <- diagnosticsResult{panicked: recovered}
			}
		}()
		results <- diagnosticsResult{diagnostics: b.parseDiagnostics(stderr.Bytes())}
	}()
	produced, decodeErr := nix.ParseStorePaths(stdout.Bytes())
	result := <-results

	if result.panicked != nil {
		if invariant, ok := result.panicked.(*InvariantError); ok {
			panic(invariant)
		}
		return nil, &WorkerError{Value: result.panicked}
	}
	diagnostics := result.diagnostics

	b.logger.Info("nix-instantiate finished",
		"root", root,
		"exit_status", status.String(),
		"sources", len(diagnostics.Sources),
		"duration", b.clock.Now().Sub(started),
	)

	// A failed evaluation prints nothing on stdout, so decodeErr and an
	// empty stdout are only fatal once nix-instantiate has succeeded.
	if !status.Success() {
		return &Outcome[Instantiation]{Failure: &Failure{
			Status:     status,
			Transcript: diagnostics.Transcript,
			Sources:    diagnostics.Sources,
		}}, nil
	}

	derivations := diagnostics.requireOutputs()
	if decodeErr != nil {
		panic(&InvariantError{
			Message:    fmt.Sprintf("nix-instantiate printed a line that is not a store path: %v", decodeErr),
			Transcript: diagnostics.Transcript,
		})
	}
	if len(produced) == 0 {
		panic(&InvariantError{
			Message:    "nix-instantiate succeeded without printing a store path",
			Transcript: diagnostics.Transcript,
		})
	}

	for _, line := range diagnostics.Passthrough {
		b.logger.Debug("nix-instantiate", "root", root, "line", string(line))
	}

	keepRoot = true
	return &Outcome[Instantiation]{Success: &Success[Instantiation]{
		Artifact: Instantiation{
			Derivations: derivations,
			Produced:    produced,
		},
		Sources: diagnostics.Sources,
		Root:    gcRoot,
	}}, nil
}

// instantiateArgs builds the nix-instantiate command line.
func instantiateArgs(rootLink, runTimeClosure, root, script string) []string {
	return []string{
		// -vv makes nix report "evaluating file" and "copied source".
		"-vv",
		"--add-root", rootLink,
		"--indirect",
		"--argstr", "runTimeClosure", runTimeClosure,
		"--argstr", "src", root,
		"--", script,
	}
}

func (b *Builder) release(root *nix.GCRoot) {
	if err := root.Release(); err != nil {
		b.logger.Warn("releasing gc root", "directory", root.Directory(), "error", err)
	}
}
