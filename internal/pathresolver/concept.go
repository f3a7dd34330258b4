package pathresolver

import (
	"fmt"

	"github.com/oxhq/fshc/internal/model"
)

// ConceptResolver finds or creates nested Concept nodes within a code
// system's concept tree, addressed by an ordered code hierarchy
// (SPEC_FULL.md §4.1, §4.5): a ConceptRule's Hierarchy names the chain of
// ancestor codes the new concept nests under, and a CodeCaretValueRule's
// CodePath addresses an existing concept the same way, ancestors first.
type ConceptResolver struct {
	roots *[]model.Concept
}

// NewConceptResolver returns a resolver over a code system's top-level
// concept list.
func NewConceptResolver(roots *[]model.Concept) *ConceptResolver {
	return &ConceptResolver{roots: roots}
}

// Resolve finds or creates the concept named by codes, an ancestors-first
// ordered chain ending in the concept itself. Missing ancestors are never
// implicitly created: a hierarchy naming an unknown ancestor is a caller
// error, since ConceptRule always declares its own full hierarchy.
func (c *ConceptResolver) Resolve(codes []string) (*model.Concept, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("empty code path")
	}

	siblings := c.roots
	var found *model.Concept
	for i, code := range codes {
		found = findConcept(siblings, code)
		if found == nil {
			if i < len(codes)-1 {
				return nil, fmt.Errorf("unknown ancestor concept %q", code)
			}
			*siblings = append(*siblings, model.Concept{Code: code})
			found = &(*siblings)[len(*siblings)-1]
		}
		siblings = &found.Children
	}
	return found, nil
}

// ResolveCodePath finds an already-declared concept by its CodePath
// without creating any missing node, used by CodeCaretValueRule.
func (c *ConceptResolver) ResolveCodePath(path model.CodePath) (*model.Concept, bool) {
	siblings := c.roots
	var found *model.Concept
	for _, code := range path.Codes {
		found = findConcept(siblings, code)
		if found == nil {
			return nil, false
		}
		siblings = &found.Children
	}
	return found, found != nil
}

func findConcept(siblings *[]model.Concept, code string) *model.Concept {
	for i := range *siblings {
		if (*siblings)[i].Code == code {
			return &(*siblings)[i]
		}
	}
	return nil
}

// SetConceptCaretValue applies a CodeCaretValueRule's value onto a
// concept's display/definition metadata.
func SetConceptCaretValue(concept *model.Concept, keys []string, val model.Value) error {
	if len(keys) == 0 {
		return fmt.Errorf("empty caret path")
	}
	switch keys[0] {
	case "display":
		concept.Display = stringOf(val)
	case "definition":
		concept.Definition = stringOf(val)
	default:
		return fmt.Errorf("unsupported concept caret path ^%s", joinKeys(keys))
	}
	return nil
}
