// Package cli wires the compiler's pipeline stages into one end-to-end
// run (SPEC_FULL.md §4.8-§4.10): scan sources, load dependency
// definitions, import, export, write. This is the single-threaded
// sequence of synchronous passes §5 describes; only the exporter's own
// worker pool runs in parallel.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/oxhq/fshc/db"
	"github.com/oxhq/fshc/internal/config"
	"github.com/oxhq/fshc/internal/core"
	"github.com/oxhq/fshc/internal/defstore"
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/exporter"
	"github.com/oxhq/fshc/internal/fisher"
	"github.com/oxhq/fshc/internal/importer"
	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/scanner"
	"github.com/oxhq/fshc/internal/writer"
)

// Run executes one compile: scan, load, import, export, and (unless
// cfg.DryRun) write. It returns a process exit code; diagnostics are
// printed to stderr (or stdout as JSON, if cfg.JSONOutput) before
// returning. A non-zero code means either a process-level failure (an
// invalid configuration, an unreadable path, no sources found) or at
// least one Error-severity diagnostic was collected during compile. A
// cache that cannot be opened is only a CacheError warning.
func Run(ctx context.Context, cfg *model.Config) int {
	if err := config.Validate(cfg); err != nil {
		return reportFatal(core.Wrap(core.ErrConfig, "validating configuration", err), cfg)
	}

	diags := diagnostic.NewCollector()

	paths := cfg.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := scanner.New(scanner.Config{
		IncludeGlobs: cfg.IncludeGlobs,
		ExcludeGlobs: cfg.ExcludeGlobs,
	}).ScanTargets(ctx, paths)
	if err != nil {
		return reportFatal(core.Wrap(core.ErrScan, "scanning sources", err), cfg)
	}
	if len(files) == 0 {
		return reportFatal(fmt.Errorf("no .fsh sources found under %v", paths), cfg)
	}

	sources := make([]importer.Source, 0, len(files))
	for _, f := range files {
		data, readErr := os.ReadFile(f)
		if readErr != nil {
			return reportFatal(core.Wrap(core.ErrIO, "reading "+f, readErr), cfg)
		}
		sources = append(sources, importer.Source{Path: f, Text: string(data)})
	}

	store := defstore.New()
	loader, cacheErr := openLoader(cfg, diags)
	if cacheErr != nil {
		diags.Warnf(diagnostic.CacheError, diagnostic.Location{}, "%v", cacheErr)
		loader = defstore.NewLoader(nil, diags)
	}
	loader.LoadDirs(store, cfg.DependencyDirs)
	for _, dep := range cfg.Dependencies {
		if n := loader.LoadPackage(ctx, store, dep.PackageID, dep.Version); n == 0 {
			diags.Errorf(diagnostic.UnknownReference, diagnostic.Location{}, "dependency %s@%s not found in cache or a local package directory", dep.PackageID, dep.Version)
		}
	}

	tank := importer.New(diags).Import(sources)

	ex := exporter.New(tank, cfg, diags)
	fish := fisher.New(store, tank)
	pkg := ex.Run(ctx, fish)

	if !cfg.DryRun {
		if _, err := writer.New(cfg.OutDir).WritePackage(pkg); err != nil {
			return reportFatal(core.Wrap(core.ErrWrite, "writing package", err), cfg)
		}
	}

	report(diags, pkg, cfg)

	if diags.ErrorCount() > 0 {
		return 1
	}
	return 0
}

// openLoader connects the dependency cache when configured. A connection
// failure degrades to "no cache" rather than aborting the compile, per
// SPEC_FULL.md §7's CacheError policy.
func openLoader(cfg *model.Config, diags *diagnostic.Collector) (*defstore.Loader, error) {
	if cfg.CacheDSN == "" {
		return defstore.NewLoader(nil, diags), nil
	}
	gdb, err := db.Connect(cfg.CacheDSN, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("opening dependency cache: %w", err)
	}
	return defstore.NewLoader(gdb, diags), nil
}
