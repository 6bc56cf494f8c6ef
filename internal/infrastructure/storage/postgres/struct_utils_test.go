package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockledger/internal/domain/catalogs/warehouse"
)

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[warehouse.Warehouse]()

	// Embedded entity.Catalog and entity.BaseEntity columns must be included.
	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "code")
	assert.Contains(t, cols, "name")
	assert.Contains(t, cols, "parent_id")
	assert.Contains(t, cols, "is_folder")
	assert.Contains(t, cols, "is_active")
}

func TestStructToMap(t *testing.T) {
	w := warehouse.NewWarehouse("WH-001", "Main warehouse")

	m := StructToMap(w)

	assert.Equal(t, "WH-001", m["code"])
	assert.Equal(t, "Main warehouse", m["name"])
	assert.Equal(t, w.ID, m["id"])
	assert.Equal(t, true, m["is_active"])
	assert.Equal(t, false, m["is_folder"])
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
