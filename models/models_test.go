package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCachedDefinitionTableName(t *testing.T) {
	assert.Equal(t, "cached_definitions", CachedDefinition{}.TableName())
}
