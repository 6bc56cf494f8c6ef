// Package item provides the Item catalog: the goods and materials whose
// stock the ledger tracks.
package item

import (
	"context"

	"stockledger/internal/core/entity"
)

// Item represents a stock-keeping unit.
type Item struct {
	entity.Catalog

	// SKU is the stock keeping unit / article number
	SKU *string `db:"sku" json:"sku,omitempty"`

	// Unit is the unit of measure (pcs, kg, m)
	Unit string `db:"unit" json:"unit"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewItem creates a new Item with required fields.
func NewItem(code, name, unit string) *Item {
	return &Item{
		Catalog: entity.NewCatalog(code, name),
		Unit:    unit,
	}
}

// Validate implements entity.Validatable interface.
func (i *Item) Validate(ctx context.Context) error {
	return i.Catalog.Validate(ctx)
}
