package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fueldesk/internal/core/entity"
)

type mockCatalog struct {
	entity.Catalog
	IsActive bool `db:"is_active" json:"isActive"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expectedCols := []string{
		"id", "deletion_mark", "version",
		"created_at", "updated_at", "created_by", "updated_by",
		"code", "name", "is_active",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap(t *testing.T) {
	cat := mockCatalog{
		Catalog:  entity.NewCatalog("T-01", "Tank 1"),
		IsActive: true,
	}
	cat.DeletionMark = true
	cat.Version = 5

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "T-01", m["code"])
	assert.Equal(t, "Tank 1", m["name"])
	assert.Equal(t, true, m["is_active"])
}
