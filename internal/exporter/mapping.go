package exporter

import (
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/pathresolver"
)

// applyMappings runs once every structure-like entity has been exported
// (SPEC_FULL.md §4.6 "Mappings"): each Mapping entity's own rules describe
// element-to-external-spec correspondences for its Source structure, added
// as ElementMapping entries rather than emitted as a standalone artifact.
func (ex *Exporter) applyMappings() {
	for _, e := range ex.tank.All(model.KindMapping) {
		m := e.(*model.Mapping)

		se, ok := ex.structures[m.Source]
		if !ok {
			ex.diags.Errorf(diagnostic.UnknownReference, m.Location, "mapping %q references unexported source %q", m.Name, m.Source)
			continue
		}

		resolver := pathresolver.New(&se.def.Elements, se.def.Type)
		for _, rule := range m.Rules {
			mr, ok := rule.(*model.MappingRule)
			if !ok {
				continue
			}
			el := resolver.Resolve(mr.Path)
			el.Mapping = append(el.Mapping, model.ElementMapping{
				Identity: m.Name,
				Map:      mr.Target,
				Comment:  mr.Comment,
				Language: mr.Language,
			})
			se.modified[el.ID] = true
		}
	}
}
