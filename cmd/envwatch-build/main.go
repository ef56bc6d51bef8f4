// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

// envwatch-build evaluates and builds one shell expression the way the
// envwatch daemon does, and reports which files the evaluation read.
//
// The root file is evaluated through an instrumentation script with
// nix-instantiate; when evaluation succeeds the resulting environment
// is realized with nix-store. The report lists the realized store path
// and every source file nix touched, so a watcher knows what to watch.
// A failed evaluation prints nix's full stderr and exits 1; the
// transcript is also archived under paths.logs for later inspection.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/envwatch/envwatch/lib/buildlog"
	"github.com/envwatch/envwatch/lib/builder"
	"github.com/envwatch/envwatch/lib/cas"
	"github.com/envwatch/envwatch/lib/config"
	"github.com/envwatch/envwatch/lib/nix"
	"github.com/envwatch/envwatch/lib/process"
	"github.com/envwatch/envwatch/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	process.Exit(err)
}

// buildFlags holds the parsed command line.
type buildFlags struct {
	configPath  string
	format      string
	gcRoot      string
	lastFailure bool
	logLevel    string
	showVersion bool
	help        bool
}

func newFlagSet(flags *buildFlags) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("envwatch-build", pflag.ContinueOnError)
	flagSet.StringVar(&flags.configPath, "config", "", "config file (default: $"+config.EnvironmentVariable+", then built-in defaults)")
	flagSet.StringVar(&flags.format, "format", "text", "output format: text, json or cbor")
	flagSet.StringVar(&flags.gcRoot, "gc-root", "", "register the built environment as a durable GC root at this path")
	flagSet.BoolVar(&flags.lastFailure, "last-failure", false, "print the archived failure of the root file instead of building it")
	flagSet.StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flagSet.BoolVar(&flags.showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&flags.help, "help", "h", false, "show help")
	return flagSet
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var flags buildFlags
	flagSet := newFlagSet(&flags)
	flagSet.SetOutput(stderr)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return usageError(stderr, "%v", err)
	}
	if flags.help {
		printHelp(stderr, flagSet)
		return nil
	}

	if flags.showVersion {
		fmt.Fprintln(stdout, "envwatch-build "+version.Full(builder.RunTimeClosure))
		return nil
	}

	format, err := parseFormat(flags.format)
	if err != nil {
		return usageError(stderr, "%v", err)
	}
	positional := flagSet.Args()
	if len(positional) != 1 {
		return usageError(stderr, "expected exactly one root file, got %d arguments", len(positional))
	}
	root, err := filepath.Abs(positional[0])
	if err != nil {
		return fmt.Errorf("resolving root file: %w", err)
	}

	logger, err := newCommandLogger(stderr, flags.logLevel)
	if err != nil {
		return usageError(stderr, "%v", err)
	}
	logger = logger.With("command", "build")

	cfg, err := config.Resolve(flags.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	if flags.lastFailure {
		return showLastFailure(stdout, stderr, format, cfg, root)
	}

	store, err := cas.Open(cfg.Paths.Store)
	if err != nil {
		return err
	}
	binaries := nix.Binaries{Directory: cfg.Nix.BinDir}
	shellBuilder, err := builder.New(builder.Options{
		Binaries:       binaries,
		RunTimeClosure: cfg.Nix.RunTimeClosure,
		Store:          store,
		RootDirectory:  cfg.Paths.GCRoots,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	var archive *buildlog.Archive
	if cfg.Logs.KeepFailures {
		compression, err := buildlog.ParseCompression(cfg.Logs.Compression)
		if err != nil {
			return err
		}
		if archive, err = buildlog.Open(cfg.Paths.Logs, compression, nil); err != nil {
			return err
		}
	}

	outcome, err := shellBuilder.Run(ctx, root)
	if err != nil {
		return err
	}
	defer func() {
		if err := outcome.Close(); err != nil {
			logger.Warn("releasing gc root", "error", err)
		}
	}()

	if err := settle(ctx, logger, outcome, root, flags.gcRoot, binaries, archive); err != nil {
		return err
	}

	if err := writeReport(stdout, format, builder.NewReport(root, outcome)); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if !outcome.Succeeded() {
		return &exitError{code: 1}
	}
	return nil
}

// showLastFailure writes the archived failure of root as a report. A
// root with no archived failure is reported on stderr and is not an
// error.
func showLastFailure(stdout, stderr io.Writer, format outputFormat, cfg *config.Config, root string) error {
	if !cfg.Logs.KeepFailures {
		return fmt.Errorf("--last-failure needs logs.keep_failures enabled")
	}
	compression, err := buildlog.ParseCompression(cfg.Logs.Compression)
	if err != nil {
		return err
	}
	archive, err := buildlog.Open(cfg.Paths.Logs, compression, nil)
	if err != nil {
		return err
	}
	record, err := archive.Read(root)
	if errors.Is(err, buildlog.ErrNoRecord) {
		fmt.Fprintf(stderr, "no failed build recorded for %s\n", root)
		return nil
	}
	if err != nil {
		return err
	}
	report := builder.NewFailureReport(record.Root, record.Sources, record.Status, record.Transcript)
	if err := writeReport(stdout, format, report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// settle performs the side effects of a finished build: promoting a
// successful build's root, and keeping or clearing the archived failure.
func settle(ctx context.Context, logger *slog.Logger, outcome *builder.Outcome[builder.Artifact], root, gcRoot string, binaries nix.Binaries, archive *buildlog.Archive) error {
	if success := outcome.Success; success != nil {
		if gcRoot != "" {
			if err := success.Root.Promote(ctx, binaries, gcRoot); err != nil {
				return err
			}
			logger.Info("gc root registered", "gc_root", gcRoot, "path", success.Artifact.Path)
		}
		if archive != nil {
			if err := archive.Remove(root); err != nil {
				logger.Warn("clearing archived failure", "error", err)
			}
		}
		return nil
	}

	if archive == nil {
		return nil
	}
	failure := outcome.Failure
	path, err := archive.Write(root, failure.Status, failure.Sources, failure.Transcript)
	if err != nil {
		logger.Warn("archiving failed build", "error", err)
		return nil
	}
	logger.Info("failed build archived", "record", path)
	return nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `envwatch-build evaluates a shell expression with nix, builds it, and
reports the environment path together with every file nix read.

Usage:
  envwatch-build [flags] <root.nix>

Examples:
  # Build shell.nix in the current directory
  envwatch-build shell.nix

  # Show the last archived failure of shell.nix
  envwatch-build --last-failure shell.nix

  # Machine-readable report, keeping the environment alive
  envwatch-build --format json --gc-root ~/.cache/envwatch/roots/project shell.nix

Exit status is 0 when the build succeeded, 1 when nix reported an
evaluation error (its output is shown), and 2 for usage errors.

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
