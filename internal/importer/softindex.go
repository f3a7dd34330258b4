package importer

import "github.com/oxhq/fshc/internal/model"

// rulePath returns a pointer to the rule's Path field, for the rule
// variants that carry one, so soft-index resolution can rewrite it in
// place. Variants with no element path (code-caret values, concepts,
// value-set components) return nil.
func rulePath(r model.Rule) *model.Path {
	switch v := r.(type) {
	case *model.CardRule:
		return &v.Path
	case *model.FlagRule:
		return &v.Path
	case *model.BindingRule:
		return &v.Path
	case *model.AssignmentRule:
		return &v.Path
	case *model.OnlyRule:
		return &v.Path
	case *model.ContainsRule:
		return &v.Path
	case *model.ObeysRule:
		return &v.Path
	case *model.CaretValueRule:
		return &v.Path
	case *model.MappingRule:
		return &v.Path
	case *model.InsertRule:
		return &v.Path
	case *model.PathRule:
		return &v.Path
	default:
		return nil
	}
}

// resolveSoftIndices rewrites every `[+]`/`[=]` step in an entity's fully
// expanded rule list to a concrete numeric index, tracking one counter per
// concrete resolved parent path in document order (SPEC_FULL.md §3, §4.2).
// The counter key for a step is its name joined to the already-resolved
// string form of every preceding step, not just their names: two branches
// that share a repeated step name (`item.item.item`) but diverge at an
// earlier resolved index are distinct parents with independent counters.
// It must run after rule-set expansion so that rules contributed by an
// `insert` are accounted for in the same document-order sequence.
func resolveSoftIndices(rules []model.Rule) {
	counters := map[string]int{}
	for _, r := range rules {
		p := rulePath(r)
		if p == nil {
			continue
		}
		prefix := ""
		for i := range p.Steps {
			step := &p.Steps[i]
			key := prefix + step.Name
			switch step.Index {
			case model.NumericIndex:
				counters[key] = step.Numeric + 1
			case model.SoftPlus:
				next := counters[key]
				counters[key] = next + 1
				step.Numeric = next
				step.Index = model.NumericIndex
				step.Resolved = true
			case model.SoftEquals:
				cur := counters[key] - 1
				if cur < 0 {
					cur = 0
				}
				step.Numeric = cur
				step.Index = model.NumericIndex
				step.Resolved = true
			}
			prefix += step.String() + "."
		}
	}
}
