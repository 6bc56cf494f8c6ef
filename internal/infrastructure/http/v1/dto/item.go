package dto

import (
	"stockledger/internal/domain/catalogs/item"
)

// ItemResponse contains item fields.
type ItemResponse struct {
	CatalogResponse
	SKU         *string `json:"sku,omitempty"`
	Unit        string  `json:"unit"`
	Description *string `json:"description,omitempty"`
}

// FromItem converts an item entity.
func FromItem(it *item.Item) ItemResponse {
	return ItemResponse{
		CatalogResponse: FromCatalog(it.Catalog),
		SKU:             it.SKU,
		Unit:            it.Unit,
		Description:     it.Description,
	}
}

// CreateItemRequest for creating items.
type CreateItemRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	SKU         *string `json:"sku"`
	Unit        string  `json:"unit"`
	Description *string `json:"description"`
}

// ToItem converts the request into a domain entity.
func (r *CreateItemRequest) ToItem() *item.Item {
	unit := r.Unit
	if unit == "" {
		unit = "pcs"
	}
	it := item.NewItem(r.Code, r.Name, unit)
	it.SKU = r.SKU
	it.Description = r.Description
	return it
}

// UpdateItemRequest for updating items.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	SKU         *string `json:"sku"`
	Unit        *string `json:"unit"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// Apply copies the provided fields onto the entity.
func (r *UpdateItemRequest) Apply(it *item.Item) {
	if r.Name != nil {
		it.Name = *r.Name
	}
	if r.SKU != nil {
		it.SKU = r.SKU
	}
	if r.Unit != nil {
		it.Unit = *r.Unit
	}
	if r.Description != nil {
		it.Description = r.Description
	}
	it.SetVersion(r.Version)
}
