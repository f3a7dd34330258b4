package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/model"
)

func importSrc(t *testing.T, text string) (*Tank, *diagnostic.Collector) {
	t.Helper()
	diags := diagnostic.NewCollector()
	tank := New(diags).Import([]Source{{Path: "t.fsh", Text: text}})
	return tank, diags
}

func TestImportSimpleProfile(t *testing.T) {
	src := "Profile: ObservationProfile\nParent: Observation\nTitle: \"My Profile\"\n* category 1..5 MS\n"
	tank, diags := importSrc(t, src)
	require.Empty(t, diags.Sorted())

	e, ok := tank.Find(model.KindProfile, "ObservationProfile")
	require.True(t, ok)
	p := e.(*model.Profile)
	assert.Equal(t, "Observation", p.Parent)
	assert.Equal(t, "My Profile", p.Title)
	require.Len(t, p.Rules, 2)
}

func TestImportDuplicateMetadataDiagnosed(t *testing.T) {
	src := "Profile: P\nParent: Observation\nParent: Patient\n* category 1..1\n"
	tank, diags := importSrc(t, src)
	require.NotEmpty(t, diags.Sorted())
	assert.Equal(t, diagnostic.DuplicateMetadata, diags.Sorted()[0].Code)

	e, ok := tank.Find(model.KindProfile, "P")
	require.True(t, ok)
	assert.Equal(t, "Observation", e.(*model.Profile).Parent)
}

func TestImportNameCollisionFirstWins(t *testing.T) {
	src := "Profile: P\nParent: Observation\n* category 1..1\n" +
		"Profile: P\nParent: Patient\n* category 0..1\n"
	tank, diags := importSrc(t, src)
	require.NotEmpty(t, diags.Sorted())
	found := false
	for _, d := range diags.Sorted() {
		if d.Code == diagnostic.NameCollision {
			found = true
		}
	}
	assert.True(t, found)

	e, _ := tank.Find(model.KindProfile, "P")
	assert.Equal(t, "Observation", e.(*model.Profile).Parent)
}

func TestImportCrossKindCollisionAllowed(t *testing.T) {
	src := "Profile: Vitals\nParent: Observation\n* category 1..1\n" +
		"Instance: Vitals\nInstanceOf: Observation\n* status = #final\n"
	tank, diags := importSrc(t, src)
	require.Empty(t, diags.Sorted())
	_, ok1 := tank.Find(model.KindProfile, "Vitals")
	_, ok2 := tank.Find(model.KindInstance, "Vitals")
	assert.True(t, ok1)
	assert.True(t, ok2)
}

func TestImportAliasResolvedInRule(t *testing.T) {
	src := "Alias: SCT = http://snomed.info/sct\n" +
		"Profile: P\nParent: Observation\n* code from SCT\n"
	tank, diags := importSrc(t, src)
	require.Empty(t, diags.Sorted())
	e, _ := tank.Find(model.KindProfile, "P")
	rules := e.Header().Rules
	require.Len(t, rules, 1)
	br := rules[0].(*model.BindingRule)
	assert.Equal(t, "http://snomed.info/sct", br.ValueSet)
}

func TestImportInvariantSeverityDefaultsToError(t *testing.T) {
	src := "Invariant: obs-1\nDescription: \"must have a code\"\nExpression: \"code.exists()\"\n"
	tank, diags := importSrc(t, src)
	require.Empty(t, diags.Sorted())

	e, ok := tank.Find(model.KindInvariant, "obs-1")
	require.True(t, ok)
	assert.Equal(t, model.SeverityError, e.(*model.Invariant).Severity)
}

func TestImportInvariantSeverityWithTrailingSystemIsDeprecated(t *testing.T) {
	src := "Invariant: obs-1\nDescription: \"must have a code\"\nExpression: \"code.exists()\"\nSeverity: #warning http://hl7.org/fhir/constraint-severity\n"
	tank, diags := importSrc(t, src)

	e, ok := tank.Find(model.KindInvariant, "obs-1")
	require.True(t, ok)
	assert.Equal(t, model.SeverityWarning, e.(*model.Invariant).Severity)

	require.Len(t, diags.Sorted(), 1)
	assert.Equal(t, diagnostic.Deprecation, diags.Sorted()[0].Code)
}

func TestImportSoftIndexResolution(t *testing.T) {
	src := "Profile: P\nParent: Observation\n" +
		"* component[+].code = #a\n" +
		"* component[+].code = #b\n" +
		"* component[=].value = #x\n"
	tank, diags := importSrc(t, src)
	require.Empty(t, diags.Sorted())
	e, _ := tank.Find(model.KindProfile, "P")
	rules := e.Header().Rules
	require.Len(t, rules, 3)

	a := rules[0].(*model.AssignmentRule)
	assert.Equal(t, 0, a.Path.Steps[0].Numeric)
	b := rules[1].(*model.AssignmentRule)
	assert.Equal(t, 1, b.Path.Steps[0].Numeric)
	c := rules[2].(*model.AssignmentRule)
	assert.Equal(t, 1, c.Path.Steps[0].Numeric)
}

// TestImportSoftIndexResolutionIsPerParentPath exercises SPEC_FULL.md §8's
// mixed numeric/soft-index worked example: the counter at a repeated step
// name must reset once an earlier step in the path resolves to a different
// index, since the two subtrees are distinct parents.
func TestImportSoftIndexResolutionIsPerParentPath(t *testing.T) {
	src := "Profile: P\nParent: Observation\n" +
		"* item[+].item[+].item[0] = #a\n" +
		"* item[0].item[+].item[+] = #b\n" +
		"* item[=].item[2].item[+] = #c\n" +
		"* item[=].item[=].item[1] = #d\n"
	tank, diags := importSrc(t, src)
	require.Empty(t, diags.Sorted())
	e, _ := tank.Find(model.KindProfile, "P")
	rules := e.Header().Rules
	require.Len(t, rules, 4)

	numerics := func(r model.Rule) []int {
		ar := r.(*model.AssignmentRule)
		out := make([]int, len(ar.Path.Steps))
		for i, s := range ar.Path.Steps {
			out[i] = s.Numeric
		}
		return out
	}
	assert.Equal(t, []int{0, 0, 0}, numerics(rules[0]))
	assert.Equal(t, []int{0, 1, 0}, numerics(rules[1]))
	assert.Equal(t, []int{0, 2, 0}, numerics(rules[2]))
	assert.Equal(t, []int{0, 2, 1}, numerics(rules[3]))
}

func TestImportPlainRuleSetInsertExpansion(t *testing.T) {
	src := "RuleSet: Common\n* status MS\n" +
		"Profile: P\nParent: Observation\n* insert Common\n"
	tank, diags := importSrc(t, src)
	require.Empty(t, diags.Sorted())
	e, _ := tank.Find(model.KindProfile, "P")
	rules := e.Header().Rules
	require.Len(t, rules, 1)
	fr := rules[0].(*model.FlagRule)
	assert.Equal(t, model.True, fr.Flags.MustSupport)
}

func TestImportParameterizedRuleSetInsertExpansion(t *testing.T) {
	src := "RuleSet: SetStatus(val)\n* status = {val}\n" +
		"Profile: P\nParent: Observation\n* insert SetStatus(#final)\n"
	tank, diags := importSrc(t, src)
	require.Empty(t, diags.Sorted())
	e, _ := tank.Find(model.KindProfile, "P")
	rules := e.Header().Rules
	require.Len(t, rules, 1)
	ar := rules[0].(*model.AssignmentRule)
	assert.Equal(t, "final", ar.Value.(model.Code).Value)
}
