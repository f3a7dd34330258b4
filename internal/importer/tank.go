// Package importer walks parse trees into the in-memory entity table the
// rest of the compiler works from (SPEC_FULL.md §4.2): metadata
// first-wins, rule classification and PathRule inheritance, rule-set
// expansion, and soft-index resolution.
package importer

import (
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/model"
)

// entityKey identifies an entity by kind and name; collisions are only
// diagnosed within the same kind (SPEC_FULL.md §4.2).
type entityKey struct {
	kind model.EntityKind
	name string
}

// Tank is the finalized, in-memory map of every entity imported from a
// set of source files, plus the rule-set bodies needed by the expander.
// It holds no alias tables; Import keeps those locally while classifying
// rules.
type Tank struct {
	entities map[entityKey]model.Entity
	order    []entityKey

	plainRuleSets map[string][]model.Rule
	paramRuleSets map[string]*model.ParameterizedRuleSet
}

func newTank() *Tank {
	return &Tank{
		entities:      map[entityKey]model.Entity{},
		plainRuleSets: map[string][]model.Rule{},
		paramRuleSets: map[string]*model.ParameterizedRuleSet{},
	}
}

// put records an entity, applying the first-wins name-collision policy
// within its kind; a later declaration of the same (kind, name) is
// diagnosed and dropped.
func (t *Tank) put(e model.Entity, diags *diagnostic.Collector) {
	h := e.Header()
	key := entityKey{kind: e.Kind(), name: h.Name}
	if existing, ok := t.entities[key]; ok {
		diags.Errorf(diagnostic.NameCollision, h.Location,
			"%s %q already declared at %s", e.Kind(), h.Name, existing.Header().Location)
		return
	}
	t.entities[key] = e
	t.order = append(t.order, key)
}

// All returns every imported entity of the given kind, in declaration
// order.
func (t *Tank) All(kind model.EntityKind) []model.Entity {
	var out []model.Entity
	for _, key := range t.order {
		if key.kind == kind {
			out = append(out, t.entities[key])
		}
	}
	return out
}

// Find looks up a single entity by kind and name.
func (t *Tank) Find(kind model.EntityKind, name string) (model.Entity, bool) {
	e, ok := t.entities[entityKey{kind: kind, name: name}]
	return e, ok
}

// FindAny looks up an entity by name across every structure-like kind,
// used when resolving a bare reference whose kind isn't yet known (e.g.
// a Parent: attribute naming either a Resource or a Profile).
func (t *Tank) FindAny(name string) (model.Entity, bool) {
	for _, kind := range []model.EntityKind{
		model.KindResource, model.KindLogical, model.KindExtension, model.KindProfile,
	} {
		if e, ok := t.Find(kind, name); ok {
			return e, true
		}
	}
	return nil, false
}

// PlainRuleSet implements ruleset.Lookup.
func (t *Tank) PlainRuleSet(name string) ([]model.Rule, bool) {
	r, ok := t.plainRuleSets[name]
	return r, ok
}

// ParameterizedRuleSet implements ruleset.Lookup.
func (t *Tank) ParameterizedRuleSet(name string) ([]string, string, diagnostic.Location, bool) {
	prs, ok := t.paramRuleSets[name]
	if !ok {
		return nil, "", diagnostic.Location{}, false
	}
	return prs.Params, prs.Body, prs.BodyLocation, true
}
