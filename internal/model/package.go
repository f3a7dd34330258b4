package model

// ArtifactKind names which output directory an Artifact belongs under
// (SPEC_FULL.md §4.10).
type ArtifactKind string

const (
	ArtifactProfile    ArtifactKind = "profile"
	ArtifactExtension  ArtifactKind = "extension"
	ArtifactLogical    ArtifactKind = "logical"
	ArtifactResource   ArtifactKind = "resource"
	ArtifactCodeSystem ArtifactKind = "codesystem"
	ArtifactValueSet   ArtifactKind = "valueset"
	ArtifactInstance   ArtifactKind = "instance"
	ArtifactMapping    ArtifactKind = "mapping"
)

// Artifact is one exported document ready to be serialized to disk. Document
// is a plain map rather than a typed struct because its shape varies by
// kind (structure-definition-like vs. a bare instance vs. a code system);
// encoding/json sorts map keys when marshaling, which is what gives the
// writer its stable key ordering guarantee.
type Artifact struct {
	Kind         ArtifactKind
	ResourceType string
	ID           string

	// Usage only applies to ArtifactInstance: "Example", "Definition", or
	// "Inline", controlling which instances/<usage>/ subdirectory it lands in.
	Usage string

	Document map[string]any
}

// Package groups every artifact produced by a compile run (SPEC_FULL.md
// §4.6 output, §6 "Output: package").
type Package struct {
	Profiles    []Artifact
	Extensions  []Artifact
	Logicals    []Artifact
	Resources   []Artifact
	CodeSystems []Artifact
	ValueSets   []Artifact
	Instances   []Artifact
	Mappings    []Artifact
}

// Len returns the total artifact count across every kind.
func (p *Package) Len() int {
	return len(p.Profiles) + len(p.Extensions) + len(p.Logicals) + len(p.Resources) +
		len(p.CodeSystems) + len(p.ValueSets) + len(p.Instances) + len(p.Mappings)
}
