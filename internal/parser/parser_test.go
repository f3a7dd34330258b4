package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/lexer"
)

func parse(t *testing.T, src string) (*Tree, *diagnostic.Collector) {
	t.Helper()
	toks := lexer.New("t.fsh", src).Tokenize()
	diags := diagnostic.NewCollector()
	tree := New("t.fsh", toks, diags).Parse()
	return tree, diags
}

func TestParseSimpleProfile(t *testing.T) {
	src := "Profile: ObservationProfile\nParent: Observation\n* category 1..5 MS\n"
	tree, diags := parse(t, src)
	require.Empty(t, diags.Sorted())
	require.Len(t, tree.Entities, 1)

	e := tree.Entities[0]
	assert.Equal(t, "Profile", e.Keyword)
	assert.Equal(t, "ObservationProfile", e.Name)
	require.Len(t, e.Metadata, 1)
	assert.Equal(t, "Parent", e.Metadata[0].Key)
	require.Len(t, e.Rules, 1)
	assert.Equal(t, 1, e.Rules[0].Depth)
}

func TestParseAlias(t *testing.T) {
	tree, diags := parse(t, "Alias: SCT = http://snomed.info/sct\n")
	require.Empty(t, diags.Sorted())
	require.Len(t, tree.Aliases, 1)
	assert.Equal(t, "SCT", tree.Aliases[0].Name)
	assert.Equal(t, "http://snomed.info/sct", tree.Aliases[0].Target)
}

func TestParseRecoversAtNextEntity(t *testing.T) {
	src := "Profile\nProfile: Second\nParent: Observation\n"
	tree, diags := parse(t, src)
	require.NotEmpty(t, diags.Sorted())
	require.Len(t, tree.Entities, 1)
	assert.Equal(t, "Second", tree.Entities[0].Name)
}

func TestMappingArrowMissingSpaceDiagnostic(t *testing.T) {
	src := "Mapping: M1\nSource: ObservationProfile\n* identifier->\"Patient.identifier\"\n"
	tree, diags := parse(t, src)
	require.Len(t, tree.Entities, 1)
	found := false
	for _, d := range diags.Sorted() {
		if d.Code == diagnostic.Syntax {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEqualsMissingSpaceDiagnostic(t *testing.T) {
	src := "Profile: P\nParent: Observation\n* status=#final\n"
	_, diags := parse(t, src)
	require.NotEmpty(t, diags.Sorted())
}

func TestEqualsWithSpacingNoDiagnostic(t *testing.T) {
	src := "Profile: P\nParent: Observation\n* status = #final\n"
	_, diags := parse(t, src)
	assert.Empty(t, diags.Sorted())
}

func TestParseRuleSetWithParams(t *testing.T) {
	src := "RuleSet: OneParamRuleSet(val)\n* status = {val}\n"
	tree, diags := parse(t, src)
	require.Empty(t, diags.Sorted())
	require.Len(t, tree.Entities, 1)
	assert.Equal(t, []string{"val"}, tree.Entities[0].Params)
	require.Len(t, tree.Entities[0].Rules, 1)
}

func TestMultipleEntitiesAndMetadata(t *testing.T) {
	src := "CodeSystem: ZOO\nTitle: \"Zoo\"\n* #bear \"Bear\" \"A member of family Ursidae.\"\n" +
		"Profile: P2\nParent: Observation\n* category 1..1\n"
	tree, diags := parse(t, src)
	require.Empty(t, diags.Sorted())
	require.Len(t, tree.Entities, 2)
	assert.Equal(t, "CodeSystem", tree.Entities[0].Keyword)
	assert.Equal(t, "Profile", tree.Entities[1].Keyword)
}
