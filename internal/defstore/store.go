// Package defstore holds base definitions loaded from external dependency
// packages (SPEC_FULL.md §4.4): indexed by id and by url, classified on
// insert into resources, types, extensions, or value sets, and always
// handed back to callers as a deep copy so exporters can freely mutate
// the snapshot they receive.
package defstore

import (
	"github.com/oxhq/fshc/internal/model"
)

// Store is an in-memory, process-lifetime index of BaseDefinitions.
type Store struct {
	byID  map[string]*model.BaseDefinition
	byURL map[string]*model.BaseDefinition

	resources  map[string]*model.BaseDefinition
	types      map[string]*model.BaseDefinition
	extensions map[string]*model.BaseDefinition
	valueSets  map[string]*model.BaseDefinition
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byID:       make(map[string]*model.BaseDefinition),
		byURL:      make(map[string]*model.BaseDefinition),
		resources:  make(map[string]*model.BaseDefinition),
		types:      make(map[string]*model.BaseDefinition),
		extensions: make(map[string]*model.BaseDefinition),
		valueSets:  make(map[string]*model.BaseDefinition),
	}
}

// Insert classifies def and indexes it by id and url. Legacy definitions
// missing element ids get them defaulted to their path first.
func (s *Store) Insert(def *model.BaseDefinition) {
	def.NormalizeElementIDs()

	if def.ID != "" {
		s.byID[def.ID] = def
	}
	if def.URL != "" {
		s.byURL[def.URL] = def
	}

	switch def.Classify() {
	case model.ClassResource:
		s.index(s.resources, def)
	case model.ClassType:
		s.index(s.types, def)
	case model.ClassExtension:
		s.index(s.extensions, def)
	case model.ClassValueSet:
		s.index(s.valueSets, def)
	}
}

func (s *Store) index(bucket map[string]*model.BaseDefinition, def *model.BaseDefinition) {
	if def.ID != "" {
		bucket[def.ID] = def
	}
	if def.URL != "" && def.URL != def.ID {
		bucket[def.URL] = def
	}
	if def.Type != "" && def.Type != def.ID && def.Type != def.URL {
		bucket[def.Type] = def
	}
}

// ByID returns a deep copy of the definition registered under id, if any.
func (s *Store) ByID(id string) (*model.BaseDefinition, bool) {
	def, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return def.Clone(), true
}

// ByURL returns a deep copy of the definition registered under url, if any.
func (s *Store) ByURL(url string) (*model.BaseDefinition, bool) {
	def, ok := s.byURL[url]
	if !ok {
		return nil, false
	}
	return def.Clone(), true
}

// Find performs the §4.4 polymorphic lookup: resources, then types, then
// extensions, then value sets, matched by id, url, or bare type name.
func (s *Store) Find(key string) (*model.BaseDefinition, bool) {
	for _, bucket := range []map[string]*model.BaseDefinition{s.resources, s.types, s.extensions, s.valueSets} {
		if def, ok := bucket[key]; ok {
			return def.Clone(), true
		}
	}
	return nil, false
}
