// Package pathresolver implements the path algebra over a structure's
// element-definition array (SPEC_FULL.md §4.5): walking an already
// soft-index-resolved model.Path from the root, finding or creating the
// element each step addresses, honoring named slices along the way.
package pathresolver

import (
	"github.com/oxhq/fshc/internal/model"
)

// Resolver walks/creates ElementDefinitions under a fixed root path
// (e.g. "Observation") within a snapshot's element slice.
type Resolver struct {
	elements *[]model.ElementDefinition
	root     string

	// openConstraint/openMapping track, per element id, the constraint or
	// mapping entry a run of CaretValueRules is currently filling in (see
	// SetCaretValue in caret.go).
	openConstraint map[string]*model.ElementConstraint
	openMapping    map[string]*model.ElementMapping
}

// New returns a Resolver over elements, addressing paths relative to root.
func New(elements *[]model.ElementDefinition, root string) *Resolver {
	return &Resolver{elements: elements, root: root}
}

// Resolve finds or creates the element addressed by path, creating any
// missing intermediate elements along the way. A step with a named slice
// index addresses (and, if absent, creates) that slice's own element,
// distinguished from its siblings by id (path stays shared, id gets a
// ":sliceName" suffix, matching the target format's own convention).
func (r *Resolver) Resolve(path model.Path) *model.ElementDefinition {
	id := r.root
	fullPath := r.root

	var el *model.ElementDefinition
	for _, step := range path.Steps {
		fullPath += "." + step.Name
		idSeg := step.Name
		if step.Index == model.SliceIndex && step.SliceName != "" {
			idSeg += ":" + step.SliceName
		}
		id += "." + idSeg
		el = r.findOrCreate(id, fullPath, step)
	}
	return el
}

// ResolveRoot returns the root element itself (for caret rules with an
// empty path, e.g. a Profile-level `* ^status = #active`), creating it if
// the snapshot is otherwise still empty.
func (r *Resolver) ResolveRoot() *model.ElementDefinition {
	return r.findOrCreate(r.root, r.root, model.Step{})
}

func (r *Resolver) findOrCreate(id, path string, step model.Step) *model.ElementDefinition {
	for i := range *r.elements {
		if (*r.elements)[i].ID == id {
			return &(*r.elements)[i]
		}
	}

	el := model.ElementDefinition{ID: id, Path: path}
	if step.Index == model.SliceIndex {
		el.SliceName = step.SliceName
	}
	*r.elements = append(*r.elements, el)
	return &(*r.elements)[len(*r.elements)-1]
}

// Find looks up an already-resolved element by id without creating one,
// used to verify a ContainsRule-created slice exists before a later rule
// addresses it (SPEC_FULL.md §4.5's "verify the step resolves under a
// ContainsRule-created slice").
func (r *Resolver) Find(id string) (*model.ElementDefinition, bool) {
	for i := range *r.elements {
		if (*r.elements)[i].ID == id {
			return &(*r.elements)[i], true
		}
	}
	return nil, false
}
