package pathresolver

import (
	"fmt"

	"github.com/oxhq/fshc/internal/model"
)

// SetCaretValue applies a CaretValueRule's value onto the element caret
// path addresses. keys is CaretPath.Keys: pure dot-split text, since the
// grammar never lexes a bracket index inside a caret sequence. That means
// array-valued metadata (constraint[], mapping[]) can't be addressed by
// index; instead a new entry opens whenever the array's first field
// (constraint.key, mapping.identity) is set, and every following rule on
// the same sub-field before that fills the most recently opened entry.
// This mirrors how these rules are written in practice: one block of
// `^constraint[+].key`-less lines per constraint, each starting with key.
func (r *Resolver) SetCaretValue(el *model.ElementDefinition, keys []string, val model.Value) error {
	if len(keys) == 0 {
		return fmt.Errorf("empty caret path")
	}

	switch keys[0] {
	case "short":
		el.Short = stringOf(val)
	case "definition":
		el.Definition = stringOf(val)
	case "comment":
		el.Comment = stringOf(val)
	case "mustSupport":
		el.MustSupport = boolOf(val)
	case "isModifier":
		el.IsModifier = boolOf(val)
	case "isSummary":
		el.IsSummary = boolOf(val)
	case "contentReference":
		el.ContentReference = stringOf(val)
	case "min":
		n := int(integerOf(val))
		el.Min = &n
	case "max":
		el.Max = stringOf(val)
	case "binding":
		r.setBinding(el, keys[1:], val)
	case "slicing":
		r.setSlicing(el, keys[1:], val)
	case "constraint":
		r.setConstraint(el, keys[1:], val)
	case "mapping":
		r.setMapping(el, keys[1:], val)
	default:
		return fmt.Errorf("unsupported caret path ^%s", joinKeys(keys))
	}
	return nil
}

func (r *Resolver) setBinding(el *model.ElementDefinition, sub []string, val model.Value) {
	if el.Binding == nil {
		el.Binding = &model.ElementBinding{}
	}
	if len(sub) == 0 {
		return
	}
	switch sub[0] {
	case "strength":
		el.Binding.Strength = stringOf(val)
	case "valueSet":
		el.Binding.ValueSet = stringOf(val)
	}
}

func (r *Resolver) setSlicing(el *model.ElementDefinition, sub []string, val model.Value) {
	if el.Slicing == nil {
		el.Slicing = &model.ElementSlicing{}
	}
	if len(sub) == 0 {
		return
	}
	switch sub[0] {
	case "rules":
		el.Slicing.Rules = stringOf(val)
	case "ordered":
		el.Slicing.Ordered = boolOf(val)
	}
}

func (r *Resolver) setConstraint(el *model.ElementDefinition, sub []string, val model.Value) {
	if len(sub) == 0 {
		return
	}
	if r.openConstraint == nil {
		r.openConstraint = make(map[string]*model.ElementConstraint)
	}

	if sub[0] == "key" || r.openConstraint[el.ID] == nil {
		el.Constraint = append(el.Constraint, model.ElementConstraint{})
		r.openConstraint[el.ID] = &el.Constraint[len(el.Constraint)-1]
	}
	c := r.openConstraint[el.ID]

	switch sub[0] {
	case "key":
		c.Key = stringOf(val)
	case "severity":
		c.Severity = stringOf(val)
	case "human":
		c.Human = stringOf(val)
	case "expression":
		c.Expression = stringOf(val)
	case "xpath":
		c.XPath = stringOf(val)
	}
}

func (r *Resolver) setMapping(el *model.ElementDefinition, sub []string, val model.Value) {
	if len(sub) == 0 {
		return
	}
	if r.openMapping == nil {
		r.openMapping = make(map[string]*model.ElementMapping)
	}

	if sub[0] == "identity" || r.openMapping[el.ID] == nil {
		el.Mapping = append(el.Mapping, model.ElementMapping{})
		r.openMapping[el.ID] = &el.Mapping[len(el.Mapping)-1]
	}
	m := r.openMapping[el.ID]

	switch sub[0] {
	case "identity":
		m.Identity = stringOf(val)
	case "language":
		m.Language = stringOf(val)
	case "map":
		m.Map = stringOf(val)
	case "comment":
		m.Comment = stringOf(val)
	}
}

func stringOf(v model.Value) string {
	if code, ok := v.(model.Code); ok {
		return code.Value
	}
	return v.String()
}

func boolOf(v model.Value) bool {
	b, ok := v.(model.Boolean)
	return ok && bool(b)
}

func integerOf(v model.Value) int64 {
	i, ok := v.(model.Integer)
	if !ok {
		return 0
	}
	return int64(i)
}

func joinKeys(keys []string) string {
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += "."
		}
		out += k
	}
	return out
}
