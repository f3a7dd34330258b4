package model

import "github.com/oxhq/fshc/internal/diagnostic"

// Rule is the tagged union of shorthand rule forms (SPEC_FULL.md §3). Every
// concrete rule type embeds Base for its source location and implements
// isRule as a sealing marker — no inheritance, just a closed set of types
// the importer and exporter switch over.
type Rule interface {
	isRule()
	Loc() diagnostic.Location
}

// Base carries the fields every rule variant needs: where it came from.
type Base struct {
	Location diagnostic.Location
}

func (b Base) Loc() diagnostic.Location { return b.Location }

// TriState models a flag that can be left unspecified, set true, or set false.
type TriState int

const (
	Unset TriState = iota
	True
	False
)

type CardRule struct {
	Base
	Path Path
	Min  *int
	Max  *string
}

func (CardRule) isRule() {}

type Flags struct {
	MustSupport TriState
	Summary     TriState
	Modifier    TriState
	TrialUse    TriState
	Normative   TriState
	Draft       TriState
}

type FlagRule struct {
	Base
	Path  Path
	Flags Flags
}

func (FlagRule) isRule() {}

type BindingStrength string

const (
	Required  BindingStrength = "required"
	Extensible BindingStrength = "extensible"
	Preferred BindingStrength = "preferred"
	Example   BindingStrength = "example"
)

type BindingRule struct {
	Base
	Path     Path
	ValueSet string
	Strength BindingStrength
}

func (BindingRule) isRule() {}

type AssignmentRule struct {
	Base
	Path       Path
	Value      Value
	Exactly    bool
	IsInstance bool
}

func (AssignmentRule) isRule() {}

type OnlyType struct {
	Name        string
	IsReference bool
}

type OnlyRule struct {
	Base
	Path  Path
	Types []OnlyType
}

func (OnlyRule) isRule() {}

type ContainsItem struct {
	Name string
	Type string // optional, empty when the item reuses the base element's type
}

type ContainsRule struct {
	Base
	Path  Path
	Items []ContainsItem
}

func (ContainsRule) isRule() {}

type ObeysRule struct {
	Base
	Path      Path
	Invariant string
}

func (ObeysRule) isRule() {}

type CaretValueRule struct {
	Base
	Path       Path
	CaretPath  CaretPath
	Value      Value
	IsInstance bool
}

func (CaretValueRule) isRule() {}

type CodeCaretValueRule struct {
	Base
	CodePath  CodePath
	CaretPath CaretPath
	Value     Value
}

func (CodeCaretValueRule) isRule() {}

type MappingRule struct {
	Base
	Path     Path
	Target   string
	Comment  string
	Language string
}

func (MappingRule) isRule() {}

type InsertRule struct {
	Base
	Path        Path
	RuleSetName string
	Params      []string
}

func (InsertRule) isRule() {}

type AddElementRule struct {
	Base
	Path             Path
	Min              int
	Max              string
	Flags            Flags
	Types            []OnlyType
	Short            string
	Definition       string
	ContentReference string
}

func (AddElementRule) isRule() {}

// ConceptRule declares one code-system concept. Hierarchy is the ordered
// chain of ancestor codes written before Code, e.g. `#bear #sunbear`
// before `#ursula`.
type ConceptRule struct {
	Base
	Code       string
	Display    string
	Definition string
	Hierarchy  []string
}

func (ConceptRule) isRule() {}

type VSComponentKind int

const (
	VSConcept VSComponentKind = iota
	VSFilterKind
)

type VSFilter struct {
	Property string
	Op       string
	Value    string
}

type ValueSetComponentRule struct {
	Base
	Kind       VSComponentKind
	Include    bool
	System     string
	SystemVer  string
	Concepts   []ConceptRule
	Filters    []VSFilter
	FromSystem string
	FromValueSets []string
}

func (ValueSetComponentRule) isRule() {}

// PathRule sets the indentation context that un-prefixed subsequent rules
// inherit (SPEC_FULL.md §4.2).
type PathRule struct {
	Base
	Path Path
}

func (PathRule) isRule() {}
