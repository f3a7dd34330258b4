package exporter

import (
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/pathresolver"
)

// exportCodeSystem builds a code system's document (SPEC_FULL.md §4.6):
// ConceptRule entries grow a nested concept tree, CodeCaretValueRule
// entries set display/definition on an already-declared concept, and any
// other CaretValueRule with an empty Path sets a root-level metadata field.
func (ex *Exporter) exportCodeSystem(cs *model.CodeSystem) map[string]any {
	doc := map[string]any{
		"resourceType": "CodeSystem",
		"id":           idOf(cs.Header),
		"url":          canonicalURL(ex.cfg.Canonical, "CodeSystem", idOf(cs.Header)),
		"name":         cs.Name,
		"status":       "draft",
	}
	if cs.Title != "" {
		doc["title"] = cs.Title
	}
	if cs.Description != "" {
		doc["description"] = cs.Description
	}
	if ex.cfg.Version != "" {
		doc["version"] = ex.cfg.Version
	}

	var concepts []model.Concept
	resolver := pathresolver.NewConceptResolver(&concepts)

	for _, rule := range cs.Rules {
		switch r := rule.(type) {
		case *model.ConceptRule:
			codes := append(append([]string{}, r.Hierarchy...), r.Code)
			concept, err := resolver.Resolve(codes)
			if err != nil {
				ex.diags.Errorf(diagnostic.RuleApplicationFailure, r.Location, "%v", err)
				continue
			}
			concept.Display = r.Display
			concept.Definition = r.Definition

		case *model.CodeCaretValueRule:
			concept, ok := resolver.ResolveCodePath(r.CodePath)
			if !ok {
				ex.diags.Errorf(diagnostic.UnknownReference, r.Location, "unknown concept %q", r.CodePath)
				continue
			}
			if err := pathresolver.SetConceptCaretValue(concept, r.CaretPath.Keys, r.Value); err != nil {
				ex.diags.Errorf(diagnostic.RuleApplicationFailure, r.Location, "%v", err)
			}

		case *model.CaretValueRule:
			if len(r.Path.Steps) > 0 {
				ex.diags.Warnf(diagnostic.RuleApplicationFailure, r.Location, "code system caret rules apply only at the root")
				continue
			}
			setNestedKey(doc, r.CaretPath.Keys, valueJSON(r.Value))
		}
	}

	if len(concepts) > 0 {
		doc["concept"] = conceptsToJSON(concepts)
		doc["count"] = countConcepts(concepts)
	}

	return doc
}

// exportValueSet builds a value set's document (SPEC_FULL.md §4.6):
// ValueSetComponentRule entries grow the compose.include/exclude arrays,
// and a root CaretValueRule sets top-level metadata fields.
func (ex *Exporter) exportValueSet(vs *model.ValueSet) map[string]any {
	doc := map[string]any{
		"resourceType": "ValueSet",
		"id":           idOf(vs.Header),
		"url":          canonicalURL(ex.cfg.Canonical, "ValueSet", idOf(vs.Header)),
		"name":         vs.Name,
		"status":       "draft",
	}
	if vs.Title != "" {
		doc["title"] = vs.Title
	}
	if vs.Description != "" {
		doc["description"] = vs.Description
	}
	if ex.cfg.Version != "" {
		doc["version"] = ex.cfg.Version
	}

	var include, exclude []any

	for _, rule := range vs.Rules {
		switch r := rule.(type) {
		case *model.ValueSetComponentRule:
			comp := buildVSComponent(r)
			if r.Include {
				include = append(include, comp)
			} else {
				exclude = append(exclude, comp)
			}

		case *model.CaretValueRule:
			if len(r.Path.Steps) > 0 {
				ex.diags.Warnf(diagnostic.RuleApplicationFailure, r.Location, "value set caret rules apply only at the root")
				continue
			}
			setNestedKey(doc, r.CaretPath.Keys, valueJSON(r.Value))
		}
	}

	if len(include) > 0 || len(exclude) > 0 {
		compose := map[string]any{}
		if len(include) > 0 {
			compose["include"] = include
		}
		if len(exclude) > 0 {
			compose["exclude"] = exclude
		}
		doc["compose"] = compose
	}

	return doc
}

func buildVSComponent(r *model.ValueSetComponentRule) map[string]any {
	comp := map[string]any{}
	if r.System != "" {
		comp["system"] = r.System
	}
	if r.FromSystem != "" {
		comp["system"] = r.FromSystem
	}
	if r.SystemVer != "" {
		comp["version"] = r.SystemVer
	}
	if len(r.FromValueSets) > 0 {
		comp["valueSet"] = r.FromValueSets
	}

	switch r.Kind {
	case model.VSConcept:
		if len(r.Concepts) > 0 {
			concepts := make([]any, 0, len(r.Concepts))
			for _, c := range r.Concepts {
				cm := map[string]any{"code": c.Code}
				if c.Display != "" {
					cm["display"] = c.Display
				}
				concepts = append(concepts, cm)
			}
			comp["concept"] = concepts
		}
	case model.VSFilterKind:
		if len(r.Filters) > 0 {
			filters := make([]any, 0, len(r.Filters))
			for _, f := range r.Filters {
				filters = append(filters, map[string]any{"property": f.Property, "op": f.Op, "value": f.Value})
			}
			comp["filter"] = filters
		}
	}

	return comp
}

func conceptsToJSON(concepts []model.Concept) []any {
	out := make([]any, 0, len(concepts))
	for _, c := range concepts {
		m := map[string]any{"code": c.Code}
		if c.Display != "" {
			m["display"] = c.Display
		}
		if c.Definition != "" {
			m["definition"] = c.Definition
		}
		if len(c.Children) > 0 {
			m["concept"] = conceptsToJSON(c.Children)
		}
		out = append(out, m)
	}
	return out
}

func countConcepts(concepts []model.Concept) int {
	n := len(concepts)
	for _, c := range concepts {
		n += countConcepts(c.Children)
	}
	return n
}

// setNestedKey applies a root-level caret rule's dotted key path onto doc,
// creating intermediate maps as needed (SPEC_FULL.md §4.6 root metadata
// carets on CodeSystem/ValueSet entities, which have no element tree to
// anchor a pathresolver.Resolver on).
func setNestedKey(doc map[string]any, keys []string, value any) {
	cur := doc
	for i, key := range keys {
		if i == len(keys)-1 {
			cur[key] = value
			return
		}
		next, ok := cur[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[key] = next
		}
		cur = next
	}
}
