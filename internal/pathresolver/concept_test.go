package pathresolver

import (
	"testing"

	"github.com/oxhq/fshc/internal/model"
)

func TestConceptResolverCreatesTopLevel(t *testing.T) {
	var roots []model.Concept
	r := NewConceptResolver(&roots)

	c, err := r.Resolve([]string{"bear"})
	if err != nil {
		t.Fatal(err)
	}
	c.Display = "Bear"

	if len(roots) != 1 || roots[0].Display != "Bear" {
		t.Fatalf("unexpected roots %+v", roots)
	}
}

func TestConceptResolverNestsUnderHierarchy(t *testing.T) {
	var roots []model.Concept
	r := NewConceptResolver(&roots)

	if _, err := r.Resolve([]string{"bear"}); err != nil {
		t.Fatal(err)
	}
	sunbear, err := r.Resolve([]string{"bear", "sunbear"})
	if err != nil {
		t.Fatal(err)
	}
	sunbear.Display = "Sun Bear"

	if len(roots[0].Children) != 1 || roots[0].Children[0].Code != "sunbear" {
		t.Fatalf("unexpected children %+v", roots[0].Children)
	}
}

func TestConceptResolverUnknownAncestorErrors(t *testing.T) {
	var roots []model.Concept
	r := NewConceptResolver(&roots)

	if _, err := r.Resolve([]string{"bear", "sunbear"}); err == nil {
		t.Fatal("expected error for missing ancestor")
	}
}

func TestConceptResolverResolveCodePathFindsExisting(t *testing.T) {
	var roots []model.Concept
	r := NewConceptResolver(&roots)

	if _, err := r.Resolve([]string{"bear"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Resolve([]string{"bear", "sunbear"}); err != nil {
		t.Fatal(err)
	}

	found, ok := r.ResolveCodePath(model.CodePath{Codes: []string{"bear", "sunbear"}})
	if !ok {
		t.Fatal("expected to find sunbear")
	}
	if found.Code != "sunbear" {
		t.Fatalf("unexpected concept %+v", found)
	}

	if _, ok := r.ResolveCodePath(model.CodePath{Codes: []string{"bear", "polarbear"}}); ok {
		t.Fatal("expected no match for unknown code")
	}
}

func TestSetConceptCaretValue(t *testing.T) {
	c := &model.Concept{Code: "bear"}
	if err := SetConceptCaretValue(c, []string{"display"}, model.String("Bear")); err != nil {
		t.Fatal(err)
	}
	if err := SetConceptCaretValue(c, []string{"definition"}, model.String("A large mammal")); err != nil {
		t.Fatal(err)
	}
	if c.Display != "Bear" || c.Definition != "A large mammal" {
		t.Fatalf("unexpected concept %+v", c)
	}
}
