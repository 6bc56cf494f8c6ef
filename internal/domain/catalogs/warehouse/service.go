package warehouse

import (
	"context"
	"fmt"

	"stockledger/internal/core/id"
	"stockledger/internal/domain"
)

// CodeNumbers allocates catalog codes when the caller omits one.
type CodeNumbers interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// Service provides business logic for the Warehouse catalog.
type Service struct {
	repo    Repository
	numbers CodeNumbers
}

// NewService creates a new Warehouse service.
func NewService(repo Repository, numbers CodeNumbers) *Service {
	return &Service{
		repo:    repo,
		numbers: numbers,
	}
}

// Create validates and stores a new warehouse, generating a code when empty.
func (s *Service) Create(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}

	if w.Code == "" {
		code, err := s.numbers.Next(ctx, "WH")
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		w.Code = code
	}

	return s.repo.Create(ctx, w)
}

// GetByID retrieves a warehouse.
func (s *Service) GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	return s.repo.GetByID(ctx, warehouseID)
}

// Update modifies an existing warehouse.
func (s *Service) Update(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, w)
}

// Delete marks a warehouse as deleted.
func (s *Service) Delete(ctx context.Context, warehouseID id.ID) error {
	return s.repo.Delete(ctx, warehouseID)
}

// List retrieves warehouses with filtering and pagination.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Warehouse], error) {
	return s.repo.List(ctx, filter)
}

// IsLeaf reports whether the warehouse exists and can hold stock.
// Returns a NOT_FOUND error for unknown IDs; false for group nodes.
// Satisfies movement.WarehouseLookup.
func (s *Service) IsLeaf(ctx context.Context, warehouseID id.ID) (bool, error) {
	w, err := s.repo.GetByID(ctx, warehouseID)
	if err != nil {
		return false, err
	}
	return w.IsLeaf(), nil
}
