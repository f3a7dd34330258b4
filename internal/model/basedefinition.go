package model

// DefinitionClass is how the definition store buckets a loaded
// base definition (SPEC_FULL.md §4.4).
type DefinitionClass string

const (
	ClassResource  DefinitionClass = "resource"
	ClassType      DefinitionClass = "type"
	ClassExtension DefinitionClass = "extension"
	ClassValueSet  DefinitionClass = "valueset"
)

// genericElementBase is the base definition url every structure-definition
// ultimately derives from when it isn't itself deriving from something more
// specific; an extension whose BaseDefinition equals this is a root
// extension rather than one constraining another extension.
const genericElementBase = "http://hl7.org/fhir/StructureDefinition/Element"

// BaseDefinition is an already-resolved structure-definition-like document
// loaded from an external dependency package (directly or via the on-disk
// cache, §4.9), held by the definition store and consulted by the
// exporter's "fish the parent" step (§4.6).
type BaseDefinition struct {
	ID             string
	URL            string
	Name           string
	Type           string // the resourceType/type this definition constrains, e.g. "Patient"
	Kind           string // "primitive-type", "complex-type", "resource", "logical"
	BaseDefinition string // parent's canonical URL, empty for roots
	Abstract       bool
	Derivation     string // "specialization" or "constraint"

	Elements []ElementDefinition
}

// Classify buckets a definition the way the definition store does on
// insert (SPEC_FULL.md §4.4).
func (b *BaseDefinition) Classify() DefinitionClass {
	switch {
	case isExtensionType(b):
		return ClassExtension
	case b.Kind == "primitive-type" || b.Kind == "complex-type" || b.Kind == "datatype":
		return ClassType
	case b.Type == "ValueSet":
		return ClassValueSet
	default:
		return ClassResource
	}
}

func isExtensionType(b *BaseDefinition) bool {
	return b.Type == "Extension" && b.BaseDefinition != genericElementBase
}

// Clone deep-copies a BaseDefinition so the definition store can hand out
// a private snapshot on every lookup (§4.4's "every lookup returns a deep
// copy" rule).
func (b *BaseDefinition) Clone() *BaseDefinition {
	if b == nil {
		return nil
	}
	clone := *b
	clone.Elements = make([]ElementDefinition, len(b.Elements))
	for i := range b.Elements {
		cloned := b.Elements[i].Clone()
		clone.Elements[i] = *cloned
	}
	return &clone
}

// NormalizeElementIDs defaults each element's ID to its Path where missing,
// for legacy definitions recorded before element ids were mandatory.
func (b *BaseDefinition) NormalizeElementIDs() {
	for i := range b.Elements {
		if b.Elements[i].ID == "" {
			b.Elements[i].ID = b.Elements[i].Path
		}
	}
}
