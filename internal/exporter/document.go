package exporter

import "github.com/oxhq/fshc/internal/model"

// assembleStructureDocument builds the final JSON-ready document for a
// structure-like entity: metadata plus snapshot/differential element
// arrays (SPEC_FULL.md §4.6 point 4-5). The differential contains only
// elements se.modified actually recorded, which always includes the root.
func (ex *Exporter) assembleStructureDocument(se *structureExport) map[string]any {
	def := se.def

	var snapshot, differential []any
	for i := range def.Elements {
		el := &def.Elements[i]
		js := elementToJSON(el)
		snapshot = append(snapshot, js)
		if se.modified[el.ID] {
			differential = append(differential, js)
		}
	}

	doc := map[string]any{
		"resourceType":   "StructureDefinition",
		"id":             def.ID,
		"url":            def.URL,
		"name":           def.Name,
		"status":         "draft",
		"kind":           def.Kind,
		"abstract":       def.Abstract,
		"type":           def.Type,
		"baseDefinition": def.BaseDefinition,
		"derivation":     def.Derivation,
		"snapshot":       map[string]any{"element": snapshot},
		"differential":   map[string]any{"element": differential},
	}
	if se.title != "" {
		doc["title"] = se.title
	}
	if se.description != "" {
		doc["description"] = se.description
	}
	if ex.cfg.Version != "" {
		doc["version"] = ex.cfg.Version
	}
	if len(ex.cfg.FHIRVersion) > 0 {
		doc["fhirVersion"] = ex.cfg.FHIRVersion[0]
	}
	return doc
}

func elementToJSON(el *model.ElementDefinition) map[string]any {
	m := map[string]any{"id": el.ID, "path": el.Path}
	if el.SliceName != "" {
		m["sliceName"] = el.SliceName
	}
	if el.Min != nil {
		m["min"] = *el.Min
	}
	if el.Max != "" {
		m["max"] = el.Max
	}
	if len(el.Type) > 0 {
		types := make([]any, 0, len(el.Type))
		for _, t := range el.Type {
			tm := map[string]any{"code": t.Code}
			if len(t.TargetProfile) > 0 {
				tm["targetProfile"] = t.TargetProfile
			}
			if len(t.Profile) > 0 {
				tm["profile"] = t.Profile
			}
			if len(t.Aggregation) > 0 {
				tm["aggregation"] = t.Aggregation
			}
			types = append(types, tm)
		}
		m["type"] = types
	}
	if el.Binding != nil {
		m["binding"] = map[string]any{"strength": el.Binding.Strength, "valueSet": el.Binding.ValueSet}
	}
	if el.ContentReference != "" {
		m["contentReference"] = el.ContentReference
	}
	if el.Short != "" {
		m["short"] = el.Short
	}
	if el.Definition != "" {
		m["definition"] = el.Definition
	}
	if el.Comment != "" {
		m["comment"] = el.Comment
	}
	if el.MustSupport {
		m["mustSupport"] = true
	}
	if el.IsModifier {
		m["isModifier"] = true
	}
	if el.IsSummary {
		m["isSummary"] = true
	}
	if len(el.Constraint) > 0 {
		cs := make([]any, 0, len(el.Constraint))
		for _, c := range el.Constraint {
			cm := map[string]any{"key": c.Key, "severity": c.Severity, "human": c.Human}
			if c.Expression != "" {
				cm["expression"] = c.Expression
			}
			if c.XPath != "" {
				cm["xpath"] = c.XPath
			}
			cs = append(cs, cm)
		}
		m["constraint"] = cs
	}
	if len(el.Mapping) > 0 {
		ms := make([]any, 0, len(el.Mapping))
		for _, mp := range el.Mapping {
			mm := map[string]any{"identity": mp.Identity, "map": mp.Map}
			if mp.Language != "" {
				mm["language"] = mp.Language
			}
			if mp.Comment != "" {
				mm["comment"] = mp.Comment
			}
			ms = append(ms, mm)
		}
		m["mapping"] = ms
	}
	if el.FixedKey != "" {
		m[el.FixedKey] = el.FixedValue
	}
	if el.PatternKey != "" {
		m[el.PatternKey] = el.PatternValue
	}
	if el.Slicing != nil {
		sm := map[string]any{"rules": el.Slicing.Rules}
		if el.Slicing.Ordered {
			sm["ordered"] = true
		}
		if len(el.Slicing.Discriminator) > 0 {
			ds := make([]any, 0, len(el.Slicing.Discriminator))
			for _, d := range el.Slicing.Discriminator {
				ds = append(ds, map[string]any{"type": d.Type, "path": d.Path})
			}
			sm["discriminator"] = ds
		}
		m["slicing"] = sm
	}
	return m
}
