// Package warehouse provides the Warehouse catalog.
// Warehouses form a hierarchy: group nodes structure the tree, leaf nodes
// are the physical locations that actually hold stock.
package warehouse

import (
	"context"

	"stockledger/internal/core/entity"
)

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.Catalog

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// IsActive indicates if warehouse is operational
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewWarehouse creates a new leaf warehouse.
func NewWarehouse(code, name string) *Warehouse {
	return &Warehouse{
		Catalog:  entity.NewCatalog(code, name),
		IsActive: true,
	}
}

// NewGroup creates a group node for the warehouse hierarchy.
func NewGroup(code, name string) *Warehouse {
	w := NewWarehouse(code, name)
	w.IsFolder = true
	return w
}

// Validate implements entity.Validatable interface.
func (w *Warehouse) Validate(ctx context.Context) error {
	return w.Catalog.Validate(ctx)
}

// IsLeaf reports whether the warehouse can hold stock directly.
func (w *Warehouse) IsLeaf() bool {
	return !w.IsFolder
}
