package model

// Dependency names one external package the definition store should load
// before import, by (packageId, version), consulting the cache (§4.9)
// before treating it as needing a cold parse.
type Dependency struct {
	PackageID string
	Version   string
}

// Config is the fully-resolved configuration for a compile run, merged
// from the three layers the config loader supports (SPEC_FULL.md §4.7).
type Config struct {
	// Paths are root files or directories to scan for .fsh sources.
	Paths []string

	// IncludeGlobs/ExcludeGlobs further filter discovered files
	// (doublestar patterns, matched against the path relative to the
	// scan root).
	IncludeGlobs []string
	ExcludeGlobs []string

	// OutDir is where the assembled package is written (§4.10).
	OutDir string

	// Canonical is the default canonical URL prefix for emitted
	// artifacts, e.g. "http://example.org/fhir".
	Canonical string

	// Version is the default version stamp written on every emitted
	// StructureDefinition, CodeSystem and ValueSet document; a root
	// `^version` caret rule on a code system or value set overrides it.
	// Instance documents do not carry it.
	Version string

	// FHIRVersion lists the declared target-format version(s).
	FHIRVersion []string

	// Dependencies are external packages to load into the definition
	// store before import.
	Dependencies []Dependency

	// FSHOnly, when true, skips assembly of the implementation-guide
	// resource; individual artifacts are still emitted. Accepted for
	// interface parity; this implementation never assembles an
	// implementation-guide resource in the first place; see DESIGN.md.
	FSHOnly bool

	// CacheDSN selects the dependency-package-cache backend (§4.9).
	// Empty means no cache: every dependency reference is reported as
	// an UnknownReference diagnostic.
	CacheDSN string

	// DependencyDirs are local package directories to ingest into the
	// definition store before importing, bypassing the cache.
	DependencyDirs []string

	// Workers sizes the exporter worker pool (§5). 0 means
	// runtime.NumCPU().
	Workers int

	Verbose    bool
	JSONOutput bool
	DryRun     bool
}
