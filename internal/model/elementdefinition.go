package model

// ElementDefinition mirrors one entry of a target-format structure
// definition's snapshot/differential element array (SPEC_FULL.md §3).
// Field names follow the target format's own casing so JSON output needs
// no translation layer.
type ElementDefinition struct {
	ID               string             `json:"id"`
	Path             string             `json:"path"`
	SliceName        string             `json:"sliceName,omitempty"`
	Min              *int               `json:"min,omitempty"`
	Max              string             `json:"max,omitempty"`
	Type             []ElementType      `json:"type,omitempty"`
	Binding          *ElementBinding    `json:"binding,omitempty"`
	ContentReference string             `json:"contentReference,omitempty"`
	Short            string             `json:"short,omitempty"`
	Definition       string             `json:"definition,omitempty"`
	Comment          string             `json:"comment,omitempty"`
	MustSupport      bool               `json:"mustSupport,omitempty"`
	IsModifier       bool               `json:"isModifier,omitempty"`
	IsSummary        bool               `json:"isSummary,omitempty"`
	Constraint       []ElementConstraint `json:"constraint,omitempty"`
	Mapping          []ElementMapping    `json:"mapping,omitempty"`

	// Fixed/Pattern are stored under their runtime type-suffixed key
	// (fixedCode, patternQuantity, ...); FixedKey/PatternKey record which
	// one is populated so JSON marshaling can place it correctly.
	FixedKey   string `json:"-"`
	FixedValue any    `json:"-"`
	PatternKey string `json:"-"`
	PatternValue any  `json:"-"`

	// Slicing is set on the element a ContainsRule slices; the exporter
	// fills in only its rules ("open"), with no discriminator.
	Slicing *ElementSlicing `json:"slicing,omitempty"`
}

// Clone returns a deep copy so exporters can mutate freely without
// aliasing the definition-store's or another artifact's copy.
func (e *ElementDefinition) Clone() *ElementDefinition {
	if e == nil {
		return nil
	}
	c := *e
	c.Type = append([]ElementType(nil), e.Type...)
	c.Constraint = append([]ElementConstraint(nil), e.Constraint...)
	c.Mapping = append([]ElementMapping(nil), e.Mapping...)
	if e.Min != nil {
		m := *e.Min
		c.Min = &m
	}
	if e.Binding != nil {
		b := *e.Binding
		c.Binding = &b
	}
	if e.Slicing != nil {
		s := *e.Slicing
		s.Discriminator = append([]SlicingDiscriminator(nil), e.Slicing.Discriminator...)
		c.Slicing = &s
	}
	return &c
}

type ElementType struct {
	Code            string   `json:"code"`
	TargetProfile   []string `json:"targetProfile,omitempty"`
	Profile         []string `json:"profile,omitempty"`
	Aggregation     []string `json:"aggregation,omitempty"`
}

type ElementBinding struct {
	Strength  string `json:"strength"`
	ValueSet  string `json:"valueSet"`
}

type ElementConstraint struct {
	Key        string `json:"key"`
	Severity   string `json:"severity"`
	Human      string `json:"human"`
	Expression string `json:"expression,omitempty"`
	XPath      string `json:"xpath,omitempty"`
}

type ElementMapping struct {
	Identity string `json:"identity"`
	Language string `json:"language,omitempty"`
	Map      string `json:"map"`
	Comment  string `json:"comment,omitempty"`
}

type SlicingDiscriminator struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type ElementSlicing struct {
	Discriminator []SlicingDiscriminator `json:"discriminator,omitempty"`
	Rules         string                 `json:"rules"`
	Ordered       bool                   `json:"ordered"`
}
