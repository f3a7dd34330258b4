package config

import (
	"testing"

	"github.com/oxhq/fshc/internal/model"
)

func TestFromEnvironmentDefaults(t *testing.T) {
	cfg := FromEnvironment()
	if cfg.OutDir != "output" {
		t.Errorf("OutDir = %q, want %q", cfg.OutDir, "output")
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0", cfg.Workers)
	}
}

func TestFromEnvironmentOverrides(t *testing.T) {
	t.Setenv("FSHC_OUT_DIR", "build")
	t.Setenv("FSHC_WORKERS", "4")
	t.Setenv("FSHC_VERBOSE", "true")
	t.Setenv("FSHC_JSON", "true")
	t.Setenv("FSHC_CACHE_DSN", "./cache.db")

	cfg := FromEnvironment()
	if cfg.OutDir != "build" {
		t.Errorf("OutDir = %q, want %q", cfg.OutDir, "build")
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
	if !cfg.JSONOutput {
		t.Error("JSONOutput = false, want true")
	}
	if cfg.CacheDSN != "./cache.db" {
		t.Errorf("CacheDSN = %q, want %q", cfg.CacheDSN, "./cache.db")
	}
}

func TestFromEnvironmentCanonicalAndFHIRVersion(t *testing.T) {
	t.Setenv("FSHC_CANONICAL", "http://example.org/fhir")
	t.Setenv("FSHC_VERSION", "1.0.0")
	t.Setenv("FSHC_FHIR_VERSION", "4.0.1,4.3.0")
	t.Setenv("FSHC_FSH_ONLY", "true")

	cfg := FromEnvironment()
	if cfg.Canonical != "http://example.org/fhir" {
		t.Errorf("Canonical = %q", cfg.Canonical)
	}
	if cfg.Version != "1.0.0" {
		t.Errorf("Version = %q", cfg.Version)
	}
	if len(cfg.FHIRVersion) != 2 || cfg.FHIRVersion[0] != "4.0.1" {
		t.Errorf("FHIRVersion = %v", cfg.FHIRVersion)
	}
	if !cfg.FSHOnly {
		t.Error("FSHOnly = false, want true")
	}
}

func TestValidateRejectsNegativeWorkers(t *testing.T) {
	cfg := &model.Config{OutDir: "output", Workers: -1}
	if err := Validate(cfg); err == nil {
		t.Error("expected an error for negative workers")
	}
}

func TestValidateRejectsEmptyOutDirWithoutDryRun(t *testing.T) {
	cfg := &model.Config{OutDir: ""}
	if err := Validate(cfg); err == nil {
		t.Error("expected an error for empty out dir without dry-run")
	}
}

func TestValidateAllowsEmptyOutDirInDryRun(t *testing.T) {
	cfg := &model.Config{OutDir: "", DryRun: true}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
