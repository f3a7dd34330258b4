package exporter

import (
	"strings"

	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/fisher"
	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/pathresolver"
)

// structureExport is the exporter's working copy of a structure-like
// entity (Profile/Extension/Logical/Resource) while rules are still being
// applied: def.Elements is the full snapshot, modified tracks which
// element ids were actually touched so the differential array (§4.6
// point 4) can be built without keeping a second, parallel element list.
type structureExport struct {
	def         *model.BaseDefinition
	kind        model.ArtifactKind
	title       string
	description string
	modified    map[string]bool
}

// exportStructureEntity exports e if it hasn't been exported yet in this
// run, recursing into its parent first if the parent is itself a local,
// not-yet-exported entity. Safe to call concurrently: memoized under ex.mu.
func (ex *Exporter) exportStructureEntity(e model.Entity) *model.BaseDefinition {
	header := e.Header()

	ex.mu.Lock()
	if se, ok := ex.structures[header.Name]; ok {
		ex.mu.Unlock()
		return se.def
	}
	ex.mu.Unlock()

	parentName, err := fisher.ParentName(e)
	if err != nil {
		ex.diags.Errorf(diagnostic.MissingMetadata, header.Location, "%v", err)
		return nil
	}

	parentDef := ex.resolveParent(parentName, header.Location)
	if parentDef == nil {
		ex.diags.Errorf(diagnostic.UnknownReference, header.Location, "cannot resolve parent %q for %q", parentName, header.Name)
		return nil
	}

	se := buildStructureExport(e, parentDef, ex.cfg)
	resolver := pathresolver.New(&se.def.Elements, se.def.Type)
	root := resolver.ResolveRoot()
	se.modified[root.ID] = true

	ex.applyStructureRules(resolver, se, header.Rules)

	ex.mu.Lock()
	ex.structures[header.Name] = se
	ex.fish.Register(se.def)
	ex.mu.Unlock()

	return se.def
}

// resolveParent asks the fisher for name; a "pending" local entity is
// exported on demand (recursively, via exportStructureEntity).
func (ex *Exporter) resolveParent(name string, loc diagnostic.Location) *model.BaseDefinition {
	ex.mu.Lock()
	def, entity, pending := ex.fish.Resolve(name)
	ex.mu.Unlock()
	if pending {
		return ex.exportStructureEntity(entity)
	}
	return def
}

func buildStructureExport(e model.Entity, parent *model.BaseDefinition, cfg *model.Config) *structureExport {
	header := e.Header()
	id := header.Id
	if id == "" {
		id = header.Name
	}

	def := &model.BaseDefinition{
		ID:             id,
		Name:           header.Name,
		BaseDefinition: parent.URL,
		Elements:       parent.Clone().Elements,
	}

	var kind model.ArtifactKind
	switch e.(type) {
	case *model.Profile:
		def.Type = parent.Type
		def.Kind = parent.Kind
		def.Derivation = "constraint"
		kind = model.ArtifactProfile
	case *model.Extension:
		def.Type = "Extension"
		def.Kind = "complex-type"
		def.Derivation = "constraint"
		kind = model.ArtifactExtension
	case *model.Logical:
		def.Type = header.Name
		def.Kind = "logical"
		def.Derivation = "specialization"
		kind = model.ArtifactLogical
	case *model.Resource:
		def.Type = header.Name
		def.Kind = "resource"
		def.Derivation = "specialization"
		kind = model.ArtifactResource
	}

	def.URL = canonicalURL(cfg.Canonical, "StructureDefinition", id)

	return &structureExport{
		def:         def,
		kind:        kind,
		title:       header.Title,
		description: header.Description,
		modified:    make(map[string]bool),
	}
}

func canonicalURL(canonical, resourceType, id string) string {
	base := strings.TrimRight(canonical, "/")
	if base == "" {
		base = "http://example.org/fhir"
	}
	return base + "/" + resourceType + "/" + id
}
