package exporter

import (
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/model"
)

// resolveInstance exports inst if it hasn't been exported yet this run,
// memoizing so an instance referenced by several inline assignments is
// only built once. instanceInFlight guards against a cycle of inline
// instances referencing one another.
func (ex *Exporter) resolveInstance(inst *model.Instance) map[string]any {
	ex.mu.Lock()
	if doc, ok := ex.exportedInstances[inst.Name]; ok {
		ex.mu.Unlock()
		return doc
	}
	if ex.instanceInFlight[inst.Name] {
		ex.mu.Unlock()
		ex.diags.Errorf(diagnostic.RuleApplicationFailure, inst.Location, "instance %q inlines itself", inst.Name)
		return map[string]any{"resourceType": inst.InstanceOf}
	}
	ex.instanceInFlight[inst.Name] = true
	ex.mu.Unlock()

	doc := ex.exportInstance(inst)

	ex.mu.Lock()
	delete(ex.instanceInFlight, inst.Name)
	ex.exportedInstances[inst.Name] = doc
	ex.mu.Unlock()

	return doc
}

// exportInstance builds an instance's JSON document by applying its
// AssignmentRules in order (SPEC_FULL.md §4.6 "Instances"): a plain
// assignment resolves to the value's JSON form, an inline-instance
// assignment (IsInstance) recursively resolves the referenced Instance
// entity and embeds its document.
func (ex *Exporter) exportInstance(inst *model.Instance) map[string]any {
	doc := map[string]any{"resourceType": inst.InstanceOf, "id": idOf(inst.Header)}

	for _, rule := range inst.Rules {
		ar, ok := rule.(*model.AssignmentRule)
		if !ok {
			continue
		}

		var value any
		if ar.IsInstance {
			rr, ok := ar.Value.(model.ResourceRef)
			if !ok {
				ex.diags.Errorf(diagnostic.RuleApplicationFailure, ar.Location, "assignment marked as instance but carries a %T value", ar.Value)
				continue
			}
			inline, ok := ex.tank.Find(model.KindInstance, rr.EntityName)
			if !ok {
				ex.diags.Errorf(diagnostic.UnknownReference, ar.Location, "inline instance %q not found", rr.EntityName)
				continue
			}
			value = ex.resolveInstance(inline.(*model.Instance))
		} else {
			value = valueJSON(ar.Value)
		}

		setInstancePath(doc, ar.Path, value)
	}

	return doc
}

// setInstancePath walks/creates nested maps and arrays inside doc to
// place value at path, honoring numeric and soft-resolved array indices
// (already resolved to concrete integers by the importer, §4.2). Named
// slice indices don't apply to raw instance data; they're treated as
// index 0 of the array, the closest equivalent for a document that
// doesn't carry structure-definition slicing metadata.
func setInstancePath(doc map[string]any, path model.Path, value any) {
	cur := doc
	for i, step := range path.Steps {
		last := i == len(path.Steps)-1

		if step.Index == model.NoIndex {
			if last {
				cur[step.Name] = value
				return
			}
			next, ok := cur[step.Name].(map[string]any)
			if !ok {
				next = map[string]any{}
				cur[step.Name] = next
			}
			cur = next
			continue
		}

		arr, _ := cur[step.Name].([]any)
		for len(arr) <= step.Numeric {
			arr = append(arr, map[string]any{})
		}
		cur[step.Name] = arr

		if last {
			arr[step.Numeric] = value
			return
		}
		next, ok := arr[step.Numeric].(map[string]any)
		if !ok {
			next = map[string]any{}
			arr[step.Numeric] = next
		}
		cur = next
	}
}
