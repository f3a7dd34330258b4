// Package config loads the compiler's configuration from the three
// layers SPEC_FULL.md §4.7 describes, lowest to highest precedence: a
// .env file in the working directory, FSHC_-prefixed environment
// variables, and CLI flags (see cli.go).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/oxhq/fshc/internal/model"
)

func init() {
	// Silently ignored if absent, same as the teacher's tooling.
	_ = godotenv.Load()
}

// FromEnvironment builds a Config seeded with defaults and anything set
// via FSHC_-prefixed environment variables (including ones a .env file
// placed into the process environment via the init above). CLI flags
// layered on top in cli.go take final precedence.
func FromEnvironment() *model.Config {
	cfg := &model.Config{
		OutDir: "output",
	}

	if v := os.Getenv("FSHC_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("FSHC_CACHE_DSN"); v != "" {
		cfg.CacheDSN = v
	}
	if v := os.Getenv("FSHC_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("FSHC_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verbose = b
		}
	}
	if v := os.Getenv("FSHC_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.JSONOutput = b
		}
	}
	if v := os.Getenv("FSHC_CANONICAL"); v != "" {
		cfg.Canonical = v
	}
	if v := os.Getenv("FSHC_VERSION"); v != "" {
		cfg.Version = v
	}
	if v := os.Getenv("FSHC_FHIR_VERSION"); v != "" {
		cfg.FHIRVersion = strings.Split(v, ",")
	}
	if v := os.Getenv("FSHC_FSH_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.FSHOnly = b
		}
	}

	return cfg
}

// Validate reports a malformed or mutually exclusive configuration
// (SPEC_FULL.md §7's ConfigError) before the pipeline starts. A cfg built
// purely by FromEnvironment plus BuildRootCommand's flags cannot produce
// most of these by construction (pflag rejects a non-integer --workers
// outright, and FromEnvironment ignores a negative FSHC_WORKERS), but a
// negative --workers value and a hand-built Config can.
func Validate(cfg *model.Config) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.OutDir == "" && !cfg.DryRun {
		return fmt.Errorf("an output directory is required unless dry-run is set")
	}
	return nil
}
