package ruleset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/lexer"
	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/parser"
)

func classifyLine(t *testing.T, src string) ([]model.Rule, *diagnostic.Collector) {
	t.Helper()
	toks := lexer.New("t.fsh", src).Tokenize()
	diags := diagnostic.NewCollector()
	lines := parser.ParseRuleLines("t.fsh", toks, diags)
	require.Len(t, lines, 1)
	ctx := &model.Path{}
	return ClassifyRule("t.fsh", lines[0], ctx, nil, diags), diags
}

func TestClassifyCardAndFlags(t *testing.T) {
	rules, diags := classifyLine(t, "* category 1..5 MS SU\n")
	require.Empty(t, diags.Sorted())
	require.Len(t, rules, 2)
	card := rules[0].(*model.CardRule)
	assert.Equal(t, 1, *card.Min)
	assert.Equal(t, "5", *card.Max)
	flags := rules[1].(*model.FlagRule)
	assert.Equal(t, model.True, flags.Flags.MustSupport)
	assert.Equal(t, model.True, flags.Flags.Summary)
}

func TestClassifyBinding(t *testing.T) {
	rules, diags := classifyLine(t, "* code from ObservationCodes (extensible)\n")
	require.Empty(t, diags.Sorted())
	require.Len(t, rules, 1)
	br := rules[0].(*model.BindingRule)
	assert.Equal(t, "ObservationCodes", br.ValueSet)
	assert.Equal(t, model.Extensible, br.Strength)
}

func TestClassifyAssignmentCode(t *testing.T) {
	rules, diags := classifyLine(t, "* status = #final\n")
	require.Empty(t, diags.Sorted())
	ar := rules[0].(*model.AssignmentRule)
	code := ar.Value.(model.Code)
	assert.Equal(t, "final", code.Value)
}

func TestClassifyAssignmentQuantity(t *testing.T) {
	rules, _ := classifyLine(t, "* valueQuantity = 5.4 'mg'\n")
	ar := rules[0].(*model.AssignmentRule)
	q := ar.Value.(model.Quantity)
	assert.InDelta(t, 5.4, q.Value, 0.0001)
	assert.Equal(t, "mg", q.Unit)
}

func TestClassifyAssignmentExponentialIntegerIsInteger(t *testing.T) {
	rules, diags := classifyLine(t, "* valueInteger = 1e2\n")
	require.Empty(t, diags.Sorted())
	ar := rules[0].(*model.AssignmentRule)
	assert.Equal(t, model.Integer(100), ar.Value)
}

func TestClassifyAssignmentExponentialFractionIsDecimal(t *testing.T) {
	rules, diags := classifyLine(t, "* valueDecimal = 1e-1\n")
	require.Empty(t, diags.Sorted())
	ar := rules[0].(*model.AssignmentRule)
	assert.Equal(t, model.Decimal(0.1), ar.Value)
}

func TestClassifyAssignmentPlainDecimalIsDecimal(t *testing.T) {
	rules, diags := classifyLine(t, "* valueDecimal = 5.5\n")
	require.Empty(t, diags.Sorted())
	ar := rules[0].(*model.AssignmentRule)
	assert.Equal(t, model.Decimal(5.5), ar.Value)
}

func TestClassifyOnly(t *testing.T) {
	rules, diags := classifyLine(t, "* value[x] only Quantity or CodeableConcept\n")
	require.Empty(t, diags.Sorted())
	only := rules[0].(*model.OnlyRule)
	require.Len(t, only.Types, 2)
	assert.Equal(t, "Quantity", only.Types[0].Name)
	assert.Equal(t, "CodeableConcept", only.Types[1].Name)
}

func TestClassifyContains(t *testing.T) {
	rules, _ := classifyLine(t, "* component contains systolic 1..1 and diastolic 0..1\n")
	cr := rules[0].(*model.ContainsRule)
	require.Len(t, cr.Items, 2)
	assert.Equal(t, "systolic", cr.Items[0].Name)
	assert.Equal(t, "diastolic", cr.Items[1].Name)
}

func TestClassifyObeys(t *testing.T) {
	rules, _ := classifyLine(t, "* obeys obs-1 and obs-2\n")
	require.Len(t, rules, 2)
	assert.Equal(t, "obs-1", rules[0].(*model.ObeysRule).Invariant)
	assert.Equal(t, "obs-2", rules[1].(*model.ObeysRule).Invariant)
}

func TestClassifyCaretValue(t *testing.T) {
	rules, diags := classifyLine(t, "* ^status = \"draft\"\n")
	require.Empty(t, diags.Sorted())
	cv := rules[0].(*model.CaretValueRule)
	assert.Equal(t, []string{"status"}, cv.CaretPath.Keys)
}

func TestClassifyConcept(t *testing.T) {
	rules, _ := classifyLine(t, "* #bear \"Bear\" \"A member of family Ursidae.\"\n")
	cr := rules[0].(*model.ConceptRule)
	assert.Equal(t, "bear", cr.Code)
	assert.Equal(t, "Bear", cr.Display)
}

func TestClassifyHierarchicalConcept(t *testing.T) {
	rules, _ := classifyLine(t, "* #bear #sunbear \"Sun bear\"\n")
	cr := rules[0].(*model.ConceptRule)
	assert.Equal(t, "sunbear", cr.Code)
	assert.Equal(t, []string{"bear"}, cr.Hierarchy)
}

func TestClassifyValueSetIncludeFromSystem(t *testing.T) {
	rules, _ := classifyLine(t, "* include codes from system SCT\n")
	vr := rules[0].(*model.ValueSetComponentRule)
	assert.True(t, vr.Include)
	assert.Equal(t, "SCT", vr.FromSystem)
}

func TestClassifyValueSetFilter(t *testing.T) {
	rules, _ := classifyLine(t, "* include codes from system SCT where concept is-a #1234\n")
	vr := rules[0].(*model.ValueSetComponentRule)
	require.Len(t, vr.Filters, 1)
	assert.Equal(t, "concept", vr.Filters[0].Property)
	assert.Equal(t, "is-a", vr.Filters[0].Op)
}

func TestClassifyMapping(t *testing.T) {
	rules, diags := classifyLine(t, "* identifier -> \"Patient.identifier\"\n")
	require.Empty(t, diags.Sorted())
	mr := rules[0].(*model.MappingRule)
	assert.Equal(t, "Patient.identifier", mr.Target)
}

func TestClassifyInsertWithParams(t *testing.T) {
	rules, diags := classifyLine(t, "* insert MyRuleSet(foo, bar)\n")
	require.Empty(t, diags.Sorted())
	ins := rules[0].(*model.InsertRule)
	assert.Equal(t, "MyRuleSet", ins.RuleSetName)
	assert.Equal(t, []string{"foo", "bar"}, ins.Params)
}

func TestPathRuleInheritedAsContext(t *testing.T) {
	toks := lexer.New("t.fsh", "* component\n* MS\n").Tokenize()
	diags := diagnostic.NewCollector()
	lines := parser.ParseRuleLines("t.fsh", toks, diags)
	require.Len(t, lines, 2)
	ctx := &model.Path{}
	first := ClassifyRule("t.fsh", lines[0], ctx, nil, diags)
	require.Len(t, first, 1)
	_ = first[0].(*model.PathRule)
	second := ClassifyRule("t.fsh", lines[1], ctx, nil, diags)
	require.Len(t, second, 1)
	flags := second[0].(*model.FlagRule)
	assert.Equal(t, "component", flags.Path.String())
}

type fakeLookup struct {
	plain map[string][]model.Rule
	param map[string]struct {
		params []string
		body   string
		loc    diagnostic.Location
	}
}

func (f *fakeLookup) PlainRuleSet(name string) ([]model.Rule, bool) {
	r, ok := f.plain[name]
	return r, ok
}

func (f *fakeLookup) ParameterizedRuleSet(name string) ([]string, string, diagnostic.Location, bool) {
	p, ok := f.param[name]
	if !ok {
		return nil, "", diagnostic.Location{}, false
	}
	return p.params, p.body, p.loc, true
}

func TestExpandParameterizedRuleSet(t *testing.T) {
	lookup := &fakeLookup{
		param: map[string]struct {
			params []string
			body   string
			loc    diagnostic.Location
		}{
			"SetStatus": {
				params: []string{"val"},
				body:   "* status = {val}\n",
				loc:    diagnostic.Location{File: "rs.fsh"},
			},
		},
	}
	exp := NewExpander(lookup)
	diags := diagnostic.NewCollector()
	ctx := &model.Path{}

	ir := &model.InsertRule{RuleSetName: "SetStatus", Params: []string{"#final"}}
	rules := Expand(exp, ir, ctx, nil, diags)
	require.Empty(t, diags.Sorted())
	require.Len(t, rules, 1)
	ar := rules[0].(*model.AssignmentRule)
	assert.Equal(t, "final", ar.Value.(model.Code).Value)

	ir2 := &model.InsertRule{RuleSetName: "SetStatus", Params: []string{"#final"}}
	rules2 := Expand(exp, ir2, ctx, nil, diags)
	require.Len(t, rules2, 1)
	assert.Equal(t, rules, rules2)
}

func TestExpandParameterMismatchDiagnostic(t *testing.T) {
	lookup := &fakeLookup{
		param: map[string]struct {
			params []string
			body   string
			loc    diagnostic.Location
		}{
			"SetStatus": {params: []string{"val"}, body: "* status = {val}\n", loc: diagnostic.Location{File: "rs.fsh"}},
		},
	}
	exp := NewExpander(lookup)
	diags := diagnostic.NewCollector()
	ir := &model.InsertRule{RuleSetName: "SetStatus", Params: []string{"a", "b"}}
	rules := Expand(exp, ir, &model.Path{}, nil, diags)
	assert.Nil(t, rules)
	require.NotEmpty(t, diags.Sorted())
	assert.Equal(t, diagnostic.RuleSetParameterMismatch, diags.Sorted()[0].Code)
}

func TestExpandPlainRuleSet(t *testing.T) {
	existing := []model.Rule{&model.FlagRule{Flags: model.Flags{MustSupport: model.True}}}
	lookup := &fakeLookup{plain: map[string][]model.Rule{"Common": existing}}
	exp := NewExpander(lookup)
	diags := diagnostic.NewCollector()
	ir := &model.InsertRule{RuleSetName: "Common"}
	rules := Expand(exp, ir, &model.Path{}, nil, diags)
	require.Empty(t, diags.Sorted())
	assert.Equal(t, existing, rules)
}
