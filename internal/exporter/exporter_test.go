package exporter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/fshc/internal/defstore"
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/fisher"
	"github.com/oxhq/fshc/internal/importer"
	"github.com/oxhq/fshc/internal/model"
)

func observationBase() *model.BaseDefinition {
	min0 := 0
	return &model.BaseDefinition{
		ID:   "Observation",
		URL:  "http://example.org/fhir/StructureDefinition/Observation",
		Name: "Observation",
		Type: "Observation",
		Kind: "resource",
		Elements: []model.ElementDefinition{
			{ID: "Observation", Path: "Observation"},
			{ID: "Observation.status", Path: "Observation.status", Min: &min0, Max: "1"},
			{ID: "Observation.category", Path: "Observation.category", Min: &min0, Max: "*"},
		},
	}
}

func newTestExporter(t *testing.T, cfg *model.Config) (*Exporter, *diagnostic.Collector) {
	t.Helper()
	store := defstore.New()
	store.Insert(observationBase())

	diags := diagnostic.NewCollector()
	if cfg == nil {
		cfg = &model.Config{Canonical: "http://example.org/fhir"}
	}

	src := importer.Source{Path: "t.fsh", Text: "" +
		"Profile: VitalSignsProfile\n" +
		"Parent: Observation\n" +
		"Title: \"Vital Signs\"\n" +
		"* status MS\n" +
		"* category 1..5\n",
	}
	tank := importer.New(diags).Import([]importer.Source{src})

	ex := New(tank, cfg, diags)
	fish := fisher.New(store, tank)
	ex.fish = fish
	return ex, diags
}

func TestRunExportsProfileAgainstStoreParent(t *testing.T) {
	ex, diags := newTestExporter(t, nil)
	pkg := ex.Run(context.Background(), ex.fish)
	require.Empty(t, diags.Sorted())

	require.Len(t, pkg.Profiles, 1)
	doc := pkg.Profiles[0].Document
	assert.Equal(t, "StructureDefinition", doc["resourceType"])
	assert.Equal(t, "VitalSignsProfile", doc["id"])
	assert.Equal(t, "http://example.org/fhir/StructureDefinition/Observation", doc["baseDefinition"])
	assert.Equal(t, "constraint", doc["derivation"])

	diff := doc["differential"].(map[string]any)["element"].([]any)
	assert.GreaterOrEqual(t, len(diff), 3) // root + status + category
}

func TestRunExportsProfileWithContains(t *testing.T) {
	diags := diagnostic.NewCollector()
	store := defstore.New()
	store.Insert(observationBase())

	src := importer.Source{Path: "t.fsh", Text: "" +
		"Profile: SlicedObservation\n" +
		"Parent: Observation\n" +
		"* category contains Vitals 0..1 and Labs 0..*\n" +
		"* category[Vitals] 0..1\n",
	}
	tank := importer.New(diags).Import([]importer.Source{src})
	require.Empty(t, diags.Sorted())

	cfg := &model.Config{Canonical: "http://example.org/fhir"}
	ex := New(tank, cfg, diags)
	fish := fisher.New(store, tank)

	pkg := ex.Run(context.Background(), fish)
	require.Len(t, pkg.Profiles, 1)

	found := false
	for _, el := range pkg.Profiles[0].Document["snapshot"].(map[string]any)["element"].([]any) {
		m := el.(map[string]any)
		if m["id"] == "Observation.category:Vitals" {
			found = true
		}
	}
	assert.True(t, found, "expected a sliced element for Vitals")
}
