package models

import (
	"time"

	"gorm.io/datatypes"
)

// CachedDefinition is one already-resolved structure-definition-like
// document from an external dependency package, keyed by the triple the
// definition store looks it up by (SPEC_FULL.md §4.4, §4.9).
type CachedDefinition struct {
	ID string `gorm:"primaryKey;type:varchar(36)"`

	PackageID string `gorm:"type:varchar(255);not null;uniqueIndex:idx_cached_definition_key"`
	Version   string `gorm:"type:varchar(64);not null;uniqueIndex:idx_cached_definition_key"`
	URL       string `gorm:"type:varchar(512);not null;uniqueIndex:idx_cached_definition_key;index"`

	// Kind classifies the document the way the definition store does on
	// insert: "resource", "type", "extension", or "valueset".
	Kind string `gorm:"type:varchar(20);not null;index"`

	// Document is the raw JSON blob, stored as-is and deep-copied on every
	// read by the definition store.
	Document datatypes.JSON `gorm:"type:jsonb;not null"`

	ContentHash string    `gorm:"type:varchar(40);not null"`
	CachedAt    time.Time `gorm:"autoCreateTime"`
}

func (CachedDefinition) TableName() string { return "cached_definitions" }
