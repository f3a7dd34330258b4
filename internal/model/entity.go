package model

import "github.com/oxhq/fshc/internal/diagnostic"

// EntityKind identifies which of the eleven top-level declaration forms an
// Entity is. Kept as a distinct type (rather than relying on a Go type
// switch alone) because the importer's name-collision table is keyed by it.
type EntityKind string

const (
	KindProfile               EntityKind = "Profile"
	KindExtension             EntityKind = "Extension"
	KindLogical               EntityKind = "Logical"
	KindResource              EntityKind = "Resource"
	KindInstance              EntityKind = "Instance"
	KindValueSet              EntityKind = "ValueSet"
	KindCodeSystem            EntityKind = "CodeSystem"
	KindInvariant             EntityKind = "Invariant"
	KindMapping               EntityKind = "Mapping"
	KindRuleSet               EntityKind = "RuleSet"
	KindParameterizedRuleSet  EntityKind = "ParameterizedRuleSet"
)

// Usage classifies an Instance for output directory placement.
type Usage string

const (
	UsageExample    Usage = "Example"
	UsageDefinition Usage = "Definition"
	UsageInline     Usage = "Inline"
)

// Entity is the tagged union of top-level shorthand declarations.
type Entity interface {
	Kind() EntityKind
	Header() *Header
}

// Header holds the fields common to every entity kind.
type Header struct {
	Name        string
	Id          string // defaults to Name if not set explicitly
	Title       string
	Description string
	Location    diagnostic.Location
	Rules       []Rule
}

func (h *Header) Header() *Header { return h }

// StructureHeader extends Header with the fields carried by every
// structure-definition-like entity (Profile, Extension, Logical, Resource).
type StructureHeader struct {
	Header
	Parent string
	Mixins []string
}

type Profile struct {
	StructureHeader
}

func (*Profile) Kind() EntityKind { return KindProfile }

type Extension struct {
	StructureHeader
}

func (*Extension) Kind() EntityKind { return KindExtension }

type Logical struct {
	StructureHeader
}

func (*Logical) Kind() EntityKind { return KindLogical }

type Resource struct {
	StructureHeader
}

func (*Resource) Kind() EntityKind { return KindResource }

type Instance struct {
	Header
	InstanceOf string
	Usage      Usage
}

func (*Instance) Kind() EntityKind { return KindInstance }

type ValueSet struct {
	Header
}

func (*ValueSet) Kind() EntityKind { return KindValueSet }

type CodeSystem struct {
	Header
}

func (*CodeSystem) Kind() EntityKind { return KindCodeSystem }

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityGuidance Severity = "guideline"
)

type Invariant struct {
	Header
	Expression string
	XPath      string
	Severity   Severity
}

func (*Invariant) Kind() EntityKind { return KindInvariant }

type Mapping struct {
	Header
	Source string
	Target string
}

func (*Mapping) Kind() EntityKind { return KindMapping }

type RuleSet struct {
	Header
}

func (*RuleSet) Kind() EntityKind { return KindRuleSet }

// ParameterizedRuleSet stores its body as raw, unparsed source text: the
// expander re-parses a parameter-substituted copy of it at every distinct
// call site (SPEC_FULL.md §4.3).
type ParameterizedRuleSet struct {
	Header
	Params []string
	Body   string
	// BodyLocation is where Body begins in the source file, so expanded
	// rules can report locations pointing into the rule set's own text.
	BodyLocation diagnostic.Location
}

func (*ParameterizedRuleSet) Kind() EntityKind { return KindParameterizedRuleSet }

// Alias maps a short identifier to a string, typically a canonical URL.
type Alias struct {
	Name   string
	Target string
}
