package item

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

// Service provides business logic for the Item catalog.
type Service struct {
	repo    Repository
	numbers CodeNumbers
}

// NewService creates a new Item service.
func NewService(repo Repository, numbers CodeNumbers) *Service {
	return &Service{
		repo:    repo,
		numbers: numbers,
	}
}

// Create validates and stores a new item, generating a code when empty.
func (s *Service) Create(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	if it.Code == "" {
		code, err := s.numbers.Next(ctx, "ITM")
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		it.Code = code
	}

	return s.repo.Create(ctx, it)
}

// GetByID retrieves an item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// Update modifies an existing item.
func (s *Service) Update(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, it)
}

// Delete marks an item as deleted.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	return s.repo.Delete(ctx, itemID)
}

// List retrieves items with filtering and pagination.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error) {
	return s.repo.List(ctx, filter)
}

// Exists checks whether an item exists.
func (s *Service) Exists(ctx context.Context, itemID id.ID) (bool, error) {
	return s.repo.Exists(ctx, itemID)
}
