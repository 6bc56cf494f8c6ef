package entity

import (
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// VoucherTypeStockEntry tags ledger rows produced by a stock movement.
const VoucherTypeStockEntry = "StockEntry"

// LedgerEntry is one immutable row of the stock ledger.
// Entries are append-only: they are never updated or deleted, and the
// running sum of Quantity per (item, warehouse) pair is the authoritative
// on-hand balance. Corrections are made with counter-entries, not edits.
type LedgerEntry struct {
	// LineID is unique identifier for this ledger row (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// Dimensions
	ItemID      id.ID `db:"item_id" json:"itemId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// PostingDate is the business date of the movement (UTC midnight)
	PostingDate time.Time `db:"posting_date" json:"postingDate"`

	// Quantity is signed: positive = inbound, negative = outbound
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// ValuationRate is the non-negative cost per unit at posting time
	ValuationRate types.Money `db:"valuation_rate" json:"valuationRate"`

	// VoucherType and VoucherNo identify the originating movement,
	// for traceability and caller-side deduplication
	VoucherType string `db:"voucher_type" json:"voucherType"`
	VoucherNo   string `db:"voucher_no" json:"voucherNo"`

	// CreatedAt is when the entry was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewLedgerEntry creates a ledger entry with generated LineID.
func NewLedgerEntry(
	itemID, warehouseID id.ID,
	postingDate time.Time,
	quantity types.Quantity,
	valuationRate types.Money,
	voucherNo string,
) LedgerEntry {
	return LedgerEntry{
		LineID:        id.New(),
		ItemID:        itemID,
		WarehouseID:   warehouseID,
		PostingDate:   postingDate,
		Quantity:      quantity,
		ValuationRate: valuationRate,
		VoucherType:   VoucherTypeStockEntry,
		VoucherNo:     voucherNo,
		CreatedAt:     time.Now().UTC(),
	}
}

// Value returns the signed stock value of the entry (quantity * rate).
func (e *LedgerEntry) Value() types.Money {
	return e.ValuationRate.Mul(e.Quantity.Decimal())
}

// IsInbound reports whether the entry increases on-hand stock.
func (e *LedgerEntry) IsInbound() bool {
	return e.Quantity.IsPositive()
}
