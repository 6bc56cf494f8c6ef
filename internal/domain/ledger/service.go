package ledger

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Service derives stock state from the ledger.
//
// There is no cached running balance: every quantity and valuation is
// recomputed from the append-only history, so the answer is always
// consistent with the ledger at the cost of an aggregate scan per call.
type Service struct {
	repo Repository
}

// NewService creates a new ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AvailableQuantity returns the on-hand quantity for an (item, warehouse)
// pair. Zero when the pair has no ledger history.
func (s *Service) AvailableQuantity(ctx context.Context, itemID, warehouseID id.ID) (types.Quantity, error) {
	qty, err := s.repo.SumQuantity(ctx, itemID, warehouseID)
	if err != nil {
		return 0, fmt.Errorf("sum quantity: %w", err)
	}
	return qty, nil
}

// CurrentValuation returns the moving-average cost per unit for an
// (item, warehouse) pair:
//
//	rate = SUM(quantity * valuation_rate) / SUM(quantity)
//
// When total quantity is zero or negative there is no stock to value and
// the rate is zero. Not an error: consuming the last unit legitimately
// leaves a pair in this state.
func (s *Service) CurrentValuation(ctx context.Context, itemID, warehouseID id.ID) (types.Money, error) {
	totals, err := s.repo.GetTotals(ctx, itemID, warehouseID)
	if err != nil {
		return types.Zero(), fmt.Errorf("get totals: %w", err)
	}

	if !totals.Quantity.IsPositive() {
		return types.Zero(), nil
	}

	return totals.Value.Div(totals.Quantity.Decimal()), nil
}

// Snapshot returns availability and valuation together from one aggregate
// query. Used by the posting engine so a line sees a consistent view.
func (s *Service) Snapshot(ctx context.Context, itemID, warehouseID id.ID) (types.Quantity, types.Money, error) {
	totals, err := s.repo.GetTotals(ctx, itemID, warehouseID)
	if err != nil {
		return 0, types.Zero(), fmt.Errorf("get totals: %w", err)
	}

	rate := types.Zero()
	if totals.Quantity.IsPositive() {
		rate = totals.Value.Div(totals.Quantity.Decimal())
	}

	return totals.Quantity, rate, nil
}

// QuantityAtDate returns the on-hand quantity as of a posting date.
func (s *Service) QuantityAtDate(ctx context.Context, itemID, warehouseID id.ID, date time.Time) (types.Quantity, error) {
	return s.repo.QuantityAtDate(ctx, itemID, warehouseID, date)
}

// History returns ledger entries for an item with optional filters.
func (s *Service) History(ctx context.Context, itemID id.ID, filter EntryFilter) ([]entity.LedgerEntry, error) {
	return s.repo.History(ctx, itemID, filter)
}

// GetVoucher returns all ledger entries produced by one movement.
func (s *Service) GetVoucher(ctx context.Context, voucherNo string) ([]entity.LedgerEntry, error) {
	return s.repo.GetByVoucher(ctx, voucherNo)
}
