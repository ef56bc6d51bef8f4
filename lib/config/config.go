// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when no flag does.
const EnvironmentVariable = "ENVWATCH_CONFIG"

// Config is the envwatch configuration.
type Config struct {
	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Nix configures how nix is invoked.
	Nix NixConfig `yaml:"nix"`

	// Logs configures the failed-build archive.
	Logs LogsConfig `yaml:"logs"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for envwatch data.
	Root string `yaml:"root"`

	// Store holds content-addressed files handed to nix, such as the
	// instrumentation script.
	Store string `yaml:"store"`

	// GCRoots is the parent of the temporary directories that anchor
	// indirect garbage-collection roots during a build. Empty means
	// the system temporary directory.
	GCRoots string `yaml:"gc_roots"`

	// Logs is where failed-build transcripts are archived.
	Logs string `yaml:"logs"`
}

// NixConfig configures how nix is invoked.
type NixConfig struct {
	// BinDir is the directory holding nix-instantiate and nix-store.
	// Empty means look them up on PATH and then in the Determinate Nix
	// profile.
	BinDir string `yaml:"bin_dir"`

	// RunTimeClosure is the store path of the runtime closure the
	// instrumentation script builds against. Empty means the value
	// linked into the binary.
	RunTimeClosure string `yaml:"run_time_closure"`
}

// LogsConfig configures the failed-build archive.
type LogsConfig struct {
	// Compression is applied to archived transcripts: none, lz4 or
	// zstd.
	Compression string `yaml:"compression"`

	// KeepFailures enables archiving failed builds.
	KeepFailures bool `yaml:"keep_failures"`
}

// Default returns the default configuration. Paths are left
// unexpanded; [Resolve] and [LoadFile] expand them.
func Default() *Config {
	homeDirectory, _ := os.UserHomeDir()

	return &Config{
		Paths: PathsConfig{
			Root:    filepath.Join(homeDirectory, ".cache", "envwatch"),
			Store:   "${ENVWATCH_ROOT}/cas",
			GCRoots: "${ENVWATCH_ROOT}/gc_roots",
			Logs:    "${ENVWATCH_ROOT}/logs",
		},
		Logs: LogsConfig{
			Compression:  "zstd",
			KeepFailures: true,
		},
	}
}

// Resolve loads the configuration for a command. A non-empty path (from
// --config) wins; otherwise ENVWATCH_CONFIG is consulted; otherwise the
// expanded [Default] is returned.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	if os.Getenv(EnvironmentVariable) != "" {
		return Load()
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// Load loads configuration from the file named by ENVWATCH_CONFIG. It
// fails when the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your envwatch.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Fields the
// file does not set keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	return cfg, nil
}

// loadFile decodes one configuration file into c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// JSON is valid YAML once comments and trailing commas are gone.
	if strings.HasSuffix(path, ".jsonc") {
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"ENVWATCH_ROOT": c.Paths.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["ENVWATCH_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Store = expandVars(c.Paths.Store, vars)
	c.Paths.GCRoots = expandVars(c.Paths.GCRoots, vars)
	c.Paths.Logs = expandVars(c.Paths.Logs, vars)
	c.Nix.BinDir = expandVars(c.Nix.BinDir, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// compressions lists the accepted logs.compression values.
var compressions = []string{"none", "lz4", "zstd"}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}
	if c.Paths.Store == "" {
		errs = append(errs, fmt.Errorf("paths.store is required"))
	}
	if c.Logs.KeepFailures && c.Paths.Logs == "" {
		errs = append(errs, fmt.Errorf("paths.logs is required when logs.keep_failures is set"))
	}

	for _, field := range []struct{ name, path string }{
		{"paths.root", c.Paths.Root},
		{"paths.store", c.Paths.Store},
		{"paths.gc_roots", c.Paths.GCRoots},
		{"paths.logs", c.Paths.Logs},
		{"nix.bin_dir", c.Nix.BinDir},
	} {
		if field.path != "" && !filepath.IsAbs(field.path) {
			errs = append(errs, fmt.Errorf("%s must be absolute, got %q", field.name, field.path))
		}
	}

	if c.Nix.RunTimeClosure != "" && !strings.HasPrefix(c.Nix.RunTimeClosure, "/nix/store/") {
		errs = append(errs, fmt.Errorf("nix.run_time_closure must be a store path, got %q", c.Nix.RunTimeClosure))
	}

	if !contains(compressions, c.Logs.Compression) {
		errs = append(errs, fmt.Errorf("logs.compression must be one of: %v", compressions))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Paths.Root,
		c.Paths.Store,
		c.Paths.GCRoots,
		c.Paths.Logs,
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
