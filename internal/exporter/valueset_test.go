package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/importer"
	"github.com/oxhq/fshc/internal/model"
)

func TestExportCodeSystemBuildsConceptTree(t *testing.T) {
	diags := diagnostic.NewCollector()
	src := importer.Source{Path: "t.fsh", Text: "" +
		"CodeSystem: AnimalKingdom\n" +
		"* #bear \"Bear\" \"A member of family Ursidae.\"\n" +
		"* #bear #sunbear \"Sun bear\"\n",
	}
	tank := importer.New(diags).Import([]importer.Source{src})
	require.Empty(t, diags.Sorted())

	cs, ok := tank.Find(model.KindCodeSystem, "AnimalKingdom")
	require.True(t, ok)

	ex := &Exporter{tank: tank, cfg: &model.Config{Canonical: "http://example.org/fhir"}, diags: diags}
	doc := ex.exportCodeSystem(cs.(*model.CodeSystem))

	assert.Equal(t, "CodeSystem", doc["resourceType"])
	concepts := doc["concept"].([]any)
	require.Len(t, concepts, 1)
	bear := concepts[0].(map[string]any)
	assert.Equal(t, "bear", bear["code"])
	assert.Equal(t, "Bear", bear["display"])
	children := bear["concept"].([]any)
	require.Len(t, children, 1)
	assert.Equal(t, "sunbear", children[0].(map[string]any)["code"])
}

func TestExportValueSetBuildsComposeInclude(t *testing.T) {
	diags := diagnostic.NewCollector()
	src := importer.Source{Path: "t.fsh", Text: "" +
		"ValueSet: ObservationStatuses\n" +
		"* include codes from system SCT\n",
	}
	tank := importer.New(diags).Import([]importer.Source{src})
	require.Empty(t, diags.Sorted())

	vs, ok := tank.Find(model.KindValueSet, "ObservationStatuses")
	require.True(t, ok)

	ex := &Exporter{tank: tank, cfg: &model.Config{Canonical: "http://example.org/fhir"}, diags: diags}
	doc := ex.exportValueSet(vs.(*model.ValueSet))

	compose := doc["compose"].(map[string]any)
	include := compose["include"].([]any)
	require.Len(t, include, 1)
	assert.Equal(t, "SCT", include[0].(map[string]any)["system"])
}

func TestSetNestedKeyCreatesIntermediateMaps(t *testing.T) {
	doc := map[string]any{}
	setNestedKey(doc, []string{"publisher"}, "Acme")
	setNestedKey(doc, []string{"contact", "name"}, "Jane")

	assert.Equal(t, "Acme", doc["publisher"])
	contact := doc["contact"].(map[string]any)
	assert.Equal(t, "Jane", contact["name"])
}
