package exporter

import (
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/pathresolver"
)

// applyStructureRules walks a structure-like entity's rules in document
// order, mutating se.def.Elements through resolver and recording which
// element ids were touched in se.modified (SPEC_FULL.md §4.6 point 3-4).
// A rule that fails to apply is diagnosed and skipped; the entity itself
// survives (§7 propagation policy).
func (ex *Exporter) applyStructureRules(resolver *pathresolver.Resolver, se *structureExport, rules []model.Rule) {
	for _, rule := range rules {
		switch r := rule.(type) {
		case *model.PathRule:
			// No-op: un-prefixed rules already inherited this path's
			// prefix during classification (SPEC_FULL.md §4.2).

		case *model.CardRule:
			el := resolver.Resolve(r.Path)
			se.modified[el.ID] = true
			if r.Min != nil {
				el.Min = r.Min
			}
			if r.Max != nil {
				el.Max = *r.Max
			}

		case *model.FlagRule:
			el := resolver.Resolve(r.Path)
			se.modified[el.ID] = true
			applyFlags(el, r.Flags)

		case *model.BindingRule:
			el := resolver.Resolve(r.Path)
			se.modified[el.ID] = true
			el.Binding = &model.ElementBinding{Strength: string(r.Strength), ValueSet: r.ValueSet}

		case *model.AssignmentRule:
			el := resolver.Resolve(r.Path)
			se.modified[el.ID] = true
			assignElement(el, r)

		case *model.OnlyRule:
			el := resolver.Resolve(r.Path)
			se.modified[el.ID] = true
			applyOnly(el, r, ex.diags)

		case *model.ContainsRule:
			applyContains(resolver, r, se.modified)

		case *model.ObeysRule:
			el := resolver.Resolve(r.Path)
			se.modified[el.ID] = true
			ex.applyObeys(el, r)

		case *model.CaretValueRule:
			var el *model.ElementDefinition
			if len(r.Path.Steps) == 0 {
				el = resolver.ResolveRoot()
			} else {
				el = resolver.Resolve(r.Path)
			}
			se.modified[el.ID] = true
			if err := resolver.SetCaretValue(el, r.CaretPath.Keys, r.Value); err != nil {
				ex.diags.Errorf(diagnostic.RuleApplicationFailure, r.Location, "%v", err)
			}

		case *model.MappingRule:
			// Applied in the dedicated mapping pass once every structure
			// has been exported (SPEC_FULL.md §4.6 ordering).

		case *model.AddElementRule:
			el := resolver.Resolve(r.Path)
			se.modified[el.ID] = true
			applyAddElement(el, r)

		case *model.InsertRule:
			// Fully expanded away by the importer; never reaches here.
		}
	}
}

// applyAddElement declares a logical model's own element in place, since
// a Logical's base is itself and AddElementRule carries its full shape
// rather than narrowing an inherited one (SPEC_FULL.md §4.6 "AddElementRule").
func applyAddElement(el *model.ElementDefinition, r *model.AddElementRule) {
	min := r.Min
	el.Min = &min
	el.Max = r.Max
	el.Short = r.Short
	el.Definition = r.Definition
	el.ContentReference = r.ContentReference
	applyFlags(el, r.Flags)

	if len(r.Types) > 0 {
		types := make([]model.ElementType, 0, len(r.Types))
		for _, t := range r.Types {
			if t.IsReference {
				types = append(types, model.ElementType{Code: "Reference", TargetProfile: []string{t.Name}})
				continue
			}
			types = append(types, model.ElementType{Code: t.Name})
		}
		el.Type = types
	}
}

func applyFlags(el *model.ElementDefinition, flags model.Flags) {
	if flags.MustSupport != model.Unset {
		el.MustSupport = flags.MustSupport == model.True
	}
	if flags.Summary != model.Unset {
		el.IsSummary = flags.Summary == model.True
	}
	if flags.Modifier != model.Unset {
		el.IsModifier = flags.Modifier == model.True
	}
}

// applyOnly restricts an element's type array to the named types,
// narrowing targetProfile for reference types (SPEC_FULL.md §4.6). Type
// names are recorded as written and are not looked up, so an unknown type
// name produces no diagnostic; only an empty type name is reported (and
// skipped).
func applyOnly(el *model.ElementDefinition, r *model.OnlyRule, diags *diagnostic.Collector) {
	types := make([]model.ElementType, 0, len(r.Types))
	for _, t := range r.Types {
		if t.Name == "" {
			diags.Warnf(diagnostic.RuleApplicationFailure, r.Location, "only rule names an empty type")
			continue
		}
		if t.IsReference {
			types = append(types, model.ElementType{Code: "Reference", TargetProfile: []string{t.Name}})
			continue
		}
		types = append(types, model.ElementType{Code: t.Name})
	}
	el.Type = types
}

// applyContains creates sliced children under the target path, one per
// ContainsItem, each a clone of the unsliced element before slicing
// (SPEC_FULL.md §4.6 "Slicing via ContainsRule").
func applyContains(resolver *pathresolver.Resolver, r *model.ContainsRule, modified map[string]bool) {
	base := resolver.Resolve(r.Path)
	modified[base.ID] = true
	if base.Slicing == nil {
		base.Slicing = &model.ElementSlicing{Rules: "open"}
	}

	for _, item := range r.Items {
		slicePath := clonePath(r.Path)
		last := &slicePath.Steps[len(slicePath.Steps)-1]
		last.Index = model.SliceIndex
		last.SliceName = item.Name

		sliceEl := resolver.Resolve(slicePath)
		cloned := base.Clone()
		cloned.ID = sliceEl.ID
		cloned.Path = sliceEl.Path
		cloned.SliceName = item.Name
		cloned.Slicing = nil
		if item.Type != "" {
			cloned.Type = []model.ElementType{{Code: item.Type}}
		}
		*sliceEl = *cloned
		modified[sliceEl.ID] = true
	}
}

func clonePath(p model.Path) model.Path {
	steps := make([]model.Step, len(p.Steps))
	copy(steps, p.Steps)
	return model.Path{Steps: steps}
}

// applyObeys appends a constraint referencing the named invariant entity,
// which must already be imported (SPEC_FULL.md §4.6 "ObeysRule").
func (ex *Exporter) applyObeys(el *model.ElementDefinition, r *model.ObeysRule) {
	e, ok := ex.tank.Find(model.KindInvariant, r.Invariant)
	if !ok {
		ex.diags.Errorf(diagnostic.UnknownReference, r.Location, "obeys references unknown invariant %q", r.Invariant)
		return
	}
	inv := e.(*model.Invariant)
	el.Constraint = append(el.Constraint, model.ElementConstraint{
		Key:        inv.Name,
		Severity:   string(inv.Severity),
		Human:      inv.Description,
		Expression: inv.Expression,
		XPath:      inv.XPath,
	})
}
