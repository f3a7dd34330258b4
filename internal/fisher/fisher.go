// Package fisher implements the "fish the parent" lookup the exporter
// runs before it can build a structure's snapshot (SPEC_FULL.md §4.6):
// resolving a parent/type/instance-of name against whatever has already
// been exported this run, the external dependency store, or an
// as-yet-unexported local entity.
package fisher

import (
	"fmt"

	"github.com/oxhq/fshc/internal/defstore"
	"github.com/oxhq/fshc/internal/importer"
	"github.com/oxhq/fshc/internal/model"
)

// kindDefaultParent is the implicit parent every structure-like entity
// kind falls back to when it declares none (SPEC_FULL.md §4.6). Profile
// has no entry: a Profile always names its own Parent explicitly.
var kindDefaultParent = map[model.EntityKind]string{
	model.KindExtension: "Extension",
	model.KindResource:  "DomainResource",
	model.KindLogical:   "Base",
}

// Fisher resolves entity/definition references across three sources, in
// priority order: definitions this run has already exported (closest and
// freshest), the external dependency store, then the local tank for an
// entity that hasn't been exported yet (the caller is expected to export
// it on demand and Register the result).
type Fisher struct {
	local map[string]*model.BaseDefinition
	store *defstore.Store
	tank  *importer.Tank
}

// New returns a Fisher over store and tank.
func New(store *defstore.Store, tank *importer.Tank) *Fisher {
	return &Fisher{local: make(map[string]*model.BaseDefinition), store: store, tank: tank}
}

// Register records a just-exported definition so later lookups in the
// same run find it without a defstore round-trip. Indexed by id, url,
// and bare type name, mirroring defstore's own indexing.
func (f *Fisher) Register(def *model.BaseDefinition) {
	if def.ID != "" {
		f.local[def.ID] = def
	}
	if def.URL != "" {
		f.local[def.URL] = def
	}
	if def.Type != "" {
		f.local[def.Type] = def
	}
}

// ParentName returns the name a structure-like entity's parent should be
// resolved against, applying the kind default when the entity declares
// none.
func ParentName(e model.Entity) (string, error) {
	switch ent := e.(type) {
	case *model.Profile:
		if ent.Parent == "" {
			return "", fmt.Errorf("profile %q declares no parent", ent.Name)
		}
		return ent.Parent, nil
	case *model.Extension:
		if ent.Parent != "" {
			return ent.Parent, nil
		}
		return kindDefaultParent[model.KindExtension], nil
	case *model.Resource:
		if ent.Parent != "" {
			return ent.Parent, nil
		}
		return kindDefaultParent[model.KindResource], nil
	case *model.Logical:
		if ent.Parent != "" {
			return ent.Parent, nil
		}
		return kindDefaultParent[model.KindLogical], nil
	case *model.Instance:
		if ent.InstanceOf == "" {
			return "", fmt.Errorf("instance %q declares no InstanceOf", ent.Name)
		}
		return ent.InstanceOf, nil
	default:
		return "", fmt.Errorf("entity kind %s has no resolvable parent", e.Kind())
	}
}

// Resolve looks up name as an already-exported local definition, then in
// the dependency store, then among not-yet-exported local entities. The
// third return value reports whether the match was a local entity still
// needing export (true) versus an already-resolved BaseDefinition.
func (f *Fisher) Resolve(name string) (def *model.BaseDefinition, entity model.Entity, pending bool) {
	if d, ok := f.local[name]; ok {
		return d, nil, false
	}
	if d, ok := f.store.Find(name); ok {
		return d, nil, false
	}
	if e, ok := f.tank.FindAny(name); ok {
		return nil, e, true
	}
	return nil, nil, false
}
