package dto

import (
	"stockledger/internal/domain/catalogs/warehouse"
)

// WarehouseResponse contains warehouse fields.
type WarehouseResponse struct {
	CatalogResponse
	Address  *string `json:"address,omitempty"`
	IsActive bool    `json:"isActive"`
}

// FromWarehouse converts a warehouse entity.
func FromWarehouse(w *warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		CatalogResponse: FromCatalog(w.Catalog),
		Address:         w.Address,
		IsActive:        w.IsActive,
	}
}

// CreateWarehouseRequest for creating warehouses.
type CreateWarehouseRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parentId"`
	IsFolder bool    `json:"isFolder"`
	Address  *string `json:"address"`
}

// ToWarehouse converts the request into a domain entity.
func (r *CreateWarehouseRequest) ToWarehouse() *warehouse.Warehouse {
	w := warehouse.NewWarehouse(r.Code, r.Name)
	w.IsFolder = r.IsFolder
	w.Address = r.Address
	if r.ParentID != nil {
		w.SetParent(*r.ParentID)
	}
	return w
}

// UpdateWarehouseRequest for updating warehouses.
type UpdateWarehouseRequest struct {
	Name     *string `json:"name"`
	ParentID *string `json:"parentId"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"isActive"`
	Version  int     `json:"version" binding:"required,min=1"`
}

// Apply copies the provided fields onto the entity.
func (r *UpdateWarehouseRequest) Apply(w *warehouse.Warehouse) {
	if r.Name != nil {
		w.Name = *r.Name
	}
	if r.ParentID != nil {
		w.SetParent(*r.ParentID)
	}
	if r.Address != nil {
		w.Address = r.Address
	}
	if r.IsActive != nil {
		w.IsActive = *r.IsActive
	}
	w.SetVersion(r.Version)
}
