// Package ledger provides the append-only stock ledger: the persistence
// contract for ledger entries and the valuation service derived from them.
package ledger

import (
	"context"
	"time"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Repository defines operations for the stock ledger store.
//
// The ledger is strictly append-only: there is no update or delete of
// individual entries. Balances and valuations are aggregate queries over
// the full history.
type Repository interface {
	// Append inserts all entries as one batch. Callers run it inside a
	// transaction so a movement's rows become visible together or not at all.
	Append(ctx context.Context, entries []entity.LedgerEntry) error

	// GetByVoucher retrieves all entries produced by one movement.
	GetByVoucher(ctx context.Context, voucherNo string) ([]entity.LedgerEntry, error)

	// GetTotals returns SUM(quantity) and SUM(quantity * valuation_rate)
	// for an (item, warehouse) pair in a single aggregate query.
	GetTotals(ctx context.Context, itemID, warehouseID id.ID) (Totals, error)

	// SumQuantity returns SUM(quantity) for an (item, warehouse) pair.
	// Zero when no entries exist.
	SumQuantity(ctx context.Context, itemID, warehouseID id.ID) (types.Quantity, error)

	// QuantityAtDate returns the on-hand quantity as of a posting date (for reports).
	QuantityAtDate(ctx context.Context, itemID, warehouseID id.ID, date time.Time) (types.Quantity, error)

	// History returns ledger entries for an item with optional filters.
	History(ctx context.Context, itemID id.ID, filter EntryFilter) ([]entity.LedgerEntry, error)

	// LockPair acquires a mutual-exclusion lock for an (item, warehouse)
	// pair, held until the surrounding transaction commits or rolls back.
	// At most one posting may be in flight per pair; the posting engine
	// locks every pair it touches before reading availability.
	LockPair(ctx context.Context, itemID, warehouseID id.ID) error
}

// Totals is the combined aggregate over one (item, warehouse) pair.
type Totals struct {
	// Quantity is SUM(quantity), the on-hand balance
	Quantity types.Quantity `db:"total_quantity" json:"quantity"`

	// Value is SUM(quantity * valuation_rate), the on-hand stock value
	Value types.Money `db:"total_value" json:"value"`
}

// EntryFilter for filtering ledger history.
type EntryFilter struct {
	WarehouseID *id.ID
	VoucherNo   string
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}
