package exporter

import "github.com/oxhq/fshc/internal/model"

// typeSuffix names the target-format type-suffixed key an assignment's
// value picks for a polymorphic field (SPEC_FULL.md §4.6: "For
// polymorphic paths ending in [x], choose a type suffix based on the
// value's runtime type").
func typeSuffix(v model.Value) string {
	switch v.(type) {
	case model.Boolean:
		return "Boolean"
	case model.Decimal:
		return "Decimal"
	case model.Integer:
		return "Integer"
	case model.String:
		return "String"
	case model.DateTime:
		return "DateTime"
	case model.Time:
		return "Time"
	case model.Code:
		return "Code"
	case model.Quantity:
		return "Quantity"
	case model.Ratio:
		return "Ratio"
	case model.Reference:
		return "Reference"
	case model.Canonical:
		return "Canonical"
	default:
		return "String"
	}
}

// valueJSON converts a model.Value into the plain-old-data shape
// encoding/json marshals into the target format's own JSON conventions.
func valueJSON(v model.Value) any {
	switch val := v.(type) {
	case model.Boolean:
		return bool(val)
	case model.Decimal:
		return float64(val)
	case model.Integer:
		return int64(val)
	case model.String:
		return string(val)
	case model.DateTime:
		return string(val)
	case model.Time:
		return string(val)
	case model.Code:
		if val.System == "" && val.Display == "" {
			return val.Value
		}
		m := map[string]any{"code": val.Value}
		if val.System != "" {
			m["system"] = val.System
		}
		if val.Display != "" {
			m["display"] = val.Display
		}
		return m
	case model.Quantity:
		m := map[string]any{"value": val.Value}
		if val.Unit != "" {
			m["unit"] = val.Unit
		}
		if val.System != "" {
			m["system"] = val.System
		}
		return m
	case model.Ratio:
		return map[string]any{
			"numerator":   valueJSON(val.Numerator),
			"denominator": valueJSON(val.Denominator),
		}
	case model.Reference:
		m := map[string]any{"reference": val.EntityName}
		if val.Display != "" {
			m["display"] = val.Display
		}
		return m
	case model.Canonical:
		if val.Version != "" {
			return val.EntityName + "|" + val.Version
		}
		return val.EntityName
	case model.ResourceRef:
		return val.EntityName
	default:
		return v.String()
	}
}

// assignElement sets an element's fixed/pattern value (SPEC_FULL.md
// §4.6 "Assignment rules"): fixed[TypeSuffix] when the rule is marked
// exactly, pattern[TypeSuffix] otherwise.
func assignElement(el *model.ElementDefinition, r *model.AssignmentRule) {
	suffix := typeSuffix(r.Value)
	jv := valueJSON(r.Value)
	if r.Exactly {
		el.FixedKey = "fixed" + suffix
		el.FixedValue = jv
		return
	}
	el.PatternKey = "pattern" + suffix
	el.PatternValue = jv
}
