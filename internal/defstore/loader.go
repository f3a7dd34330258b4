package defstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/util"
	"github.com/oxhq/fshc/models"
)

// rawDocument is the subset of a target-format document the loader reads;
// everything else round-trips untouched in whichever artifact re-exports
// the definition, since the definition store only ever needs the parent's
// own shape.
type rawDocument struct {
	ResourceType   string `json:"resourceType"`
	ID             string `json:"id"`
	URL            string `json:"url"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Kind           string `json:"kind"`
	BaseDefinition string `json:"baseDefinition"`
	Abstract       bool   `json:"abstract"`
	Derivation     string `json:"derivation"`
	Snapshot       *struct {
		Element []model.ElementDefinition `json:"element"`
	} `json:"snapshot"`
	Differential *struct {
		Element []model.ElementDefinition `json:"element"`
	} `json:"differential"`
}

func parseDocument(data []byte) (*model.BaseDefinition, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	typ := raw.Type
	if typ == "" {
		typ = raw.ResourceType
	}

	def := &model.BaseDefinition{
		ID:             raw.ID,
		URL:            raw.URL,
		Name:           raw.Name,
		Type:           typ,
		Kind:           raw.Kind,
		BaseDefinition: raw.BaseDefinition,
		Abstract:       raw.Abstract,
		Derivation:     raw.Derivation,
	}

	switch {
	case raw.Snapshot != nil:
		def.Elements = raw.Snapshot.Element
	case raw.Differential != nil:
		def.Elements = raw.Differential.Element
	}

	return def, nil
}

// Loader ingests base definitions from local package directories and the
// on-disk dependency cache (SPEC_FULL.md §4.9) into a Store. Every load
// it performs happens in one pass before the first importer pass begins,
// per the §5 suspension rule: this is the compiler's one potentially
// blocking stage.
type Loader struct {
	cache *gorm.DB
	diags *diagnostic.Collector
}

// NewLoader returns a Loader. cache may be nil, meaning no dependency
// cache is configured: every cache lookup then misses and the caller must
// treat the reference as an UnknownReference diagnostic.
func NewLoader(cache *gorm.DB, diags *diagnostic.Collector) *Loader {
	return &Loader{cache: cache, diags: diags}
}

// LoadDirs walks each directory for *.json documents, parsing and
// inserting each into store. Malformed documents are skipped with a
// warning rather than aborting the whole load.
func (l *Loader) LoadDirs(store *Store, dirs []string) {
	for _, dir := range dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				l.diags.Warnf(diagnostic.CacheError, diagnostic.Location{File: path}, "reading dependency file: %v", readErr)
				return nil
			}
			def, parseErr := parseDocument(data)
			if parseErr != nil {
				l.diags.Warnf(diagnostic.CacheError, diagnostic.Location{File: path}, "parsing dependency document: %v", parseErr)
				return nil
			}
			store.Insert(def)
			return nil
		})
	}
}

// Resolve looks up (packageID, version, url) in the dependency cache. On a
// hit it parses the cached document, inserts it into store, and returns
// true. A miss (including a nil cache) returns false so the caller can
// emit an UnknownReference diagnostic rather than trying to fetch anything.
// ctx is threaded to the underlying query so a caller can bound or cancel
// the lookup; cache access is the only potentially-blocking step in the
// pipeline (SPEC_FULL.md §5).
func (l *Loader) Resolve(ctx context.Context, store *Store, packageID, version, url string) bool {
	if l.cache == nil {
		return false
	}

	var row models.CachedDefinition
	err := l.cache.WithContext(ctx).Where("package_id = ? AND version = ? AND url = ?", packageID, version, url).First(&row).Error
	if err != nil {
		return false
	}

	def, err := parseDocument(row.Document)
	if err != nil {
		l.diags.Warnf(diagnostic.CacheError, diagnostic.Location{}, "parsing cached definition %s: %v", url, err)
		return false
	}
	store.Insert(def)
	return true
}

// LoadPackage ingests every cached document for one (packageID, version)
// pair into store, and reports how many rows were found. A zero count
// (including a nil cache) means the caller should treat the dependency as
// unresolved: it is in neither the cache nor a local package directory,
// and this loader never fetches anything over the network (SPEC_FULL.md
// §4.9).
func (l *Loader) LoadPackage(ctx context.Context, store *Store, packageID, version string) int {
	if l.cache == nil {
		return 0
	}

	var rows []models.CachedDefinition
	if err := l.cache.WithContext(ctx).Where("package_id = ? AND version = ?", packageID, version).Find(&rows).Error; err != nil {
		l.diags.Warnf(diagnostic.CacheError, diagnostic.Location{}, "loading cached package %s@%s: %v", packageID, version, err)
		return 0
	}

	for _, row := range rows {
		def, err := parseDocument(row.Document)
		if err != nil {
			l.diags.Warnf(diagnostic.CacheError, diagnostic.Location{}, "parsing cached definition %s: %v", row.URL, err)
			continue
		}
		store.Insert(def)
	}
	return len(rows)
}

// CacheWrite writes a cold-parsed definition back to the cache so a
// subsequent Resolve call for the same (packageID, version, url) hits.
// No-op if no cache is configured.
func (l *Loader) CacheWrite(packageID, version, url string, raw []byte, class model.DefinitionClass) error {
	if l.cache == nil {
		return nil
	}

	row := models.CachedDefinition{
		ID:          uuid.NewString(),
		PackageID:   packageID,
		Version:     version,
		URL:         url,
		Kind:        string(class),
		Document:    datatypes.JSON(raw),
		ContentHash: util.SHA1Hex(raw),
	}
	if err := l.cache.Create(&row).Error; err != nil {
		return fmt.Errorf("caching definition %s: %w", url, err)
	}
	return nil
}
