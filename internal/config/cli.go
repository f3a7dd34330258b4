package config

import (
	"github.com/spf13/cobra"

	"github.com/oxhq/fshc/internal/model"
)

// BuildRootCommand wires a cobra command whose pflag-backed flags, once
// parsed, overwrite cfg (already seeded by FromEnvironment, the lower two
// precedence layers) and invoke run with the resolved positional paths.
// exitCode receives run's return value since cobra's own RunE only
// carries an error, not an integer status.
func BuildRootCommand(cfg *model.Config, exitCode *int, run func(cfg *model.Config) int) *cobra.Command {
	var includeGlobs, excludeGlobs, depDirs, fhirVersions []string

	cmd := &cobra.Command{
		Use:          "fshc [paths...]",
		Short:        "Compile shorthand definition sources into structure-definition JSON",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args
			cfg.IncludeGlobs = includeGlobs
			cfg.ExcludeGlobs = excludeGlobs
			cfg.DependencyDirs = depDirs
			if len(fhirVersions) > 0 {
				cfg.FHIRVersion = fhirVersions
			}
			*exitCode = run(cfg)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.OutDir, "out", cfg.OutDir, "output directory for the assembled package")
	flags.StringVar(&cfg.CacheDSN, "cache-dsn", cfg.CacheDSN, "dependency package cache DSN (sqlite file path, postgres://, or libsql://)")
	flags.StringSliceVar(&depDirs, "deps", nil, "local dependency package directories to ingest, bypassing the cache")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "exporter worker pool size, 0 uses runtime.NumCPU()")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "verbose diagnostic output")
	flags.BoolVar(&cfg.JSONOutput, "json", cfg.JSONOutput, "emit the compile summary and diagnostics as JSON")
	flags.BoolVarP(&cfg.DryRun, "dry-run", "d", cfg.DryRun, "compile and report diagnostics without writing the output package")
	flags.StringSliceVar(&includeGlobs, "include", nil, "include glob patterns (doublestar), relative to each scan root")
	flags.StringSliceVar(&excludeGlobs, "exclude", nil, "exclude glob patterns (doublestar), relative to each scan root")
	flags.StringVar(&cfg.Canonical, "canonical", cfg.Canonical, "default canonical URL prefix for emitted artifacts")
	flags.StringVar(&cfg.Version, "version-stamp", cfg.Version, "default version stamp for emitted artifacts")
	flags.StringSliceVar(&fhirVersions, "fhir-version", nil, "declared target-format version(s)")
	flags.BoolVar(&cfg.FSHOnly, "fsh-only", cfg.FSHOnly, "skip implementation-guide assembly, still emit individual artifacts")

	return cmd
}
