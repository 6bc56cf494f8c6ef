package dto

import (
	"time"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/ledger"
)

// LedgerEntryResponse is one ledger row.
type LedgerEntryResponse struct {
	LineID        string         `json:"lineId"`
	ItemID        string         `json:"itemId"`
	WarehouseID   string         `json:"warehouseId"`
	PostingDate   string         `json:"postingDate"`
	Quantity      types.Quantity `json:"quantity"`
	ValuationRate types.Money    `json:"valuationRate"`
	VoucherType   string         `json:"voucherType"`
	VoucherNo     string         `json:"voucherNo"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// FromLedgerEntry converts a ledger entry.
func FromLedgerEntry(e entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		LineID:        e.LineID.String(),
		ItemID:        e.ItemID.String(),
		WarehouseID:   e.WarehouseID.String(),
		PostingDate:   e.PostingDate.Format(PostingDateLayout),
		Quantity:      e.Quantity,
		ValuationRate: e.ValuationRate,
		VoucherType:   e.VoucherType,
		VoucherNo:     e.VoucherNo,
		CreatedAt:     e.CreatedAt,
	}
}

// FromLedgerEntries converts a slice of ledger entries.
func FromLedgerEntries(entries []entity.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromLedgerEntry(e))
	}
	return out
}

// HistoryRequest filters ledger history queries.
type HistoryRequest struct {
	WarehouseID string `form:"warehouseId"`
	VoucherNo   string `form:"voucherNo"`
	FromDate    string `form:"fromDate"`
	ToDate      string `form:"toDate"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

// AvailabilityResponse is the on-hand quantity for a pair.
type AvailabilityResponse struct {
	ItemID      string         `json:"itemId"`
	WarehouseID string         `json:"warehouseId"`
	Quantity    types.Quantity `json:"quantity"`

	// AtDate is set when the balance was computed as of a date
	AtDate string `json:"atDate,omitempty"`
}

// ValuationResponse is the moving-average rate for a pair.
type ValuationResponse struct {
	ItemID      string      `json:"itemId"`
	WarehouseID string      `json:"warehouseId"`
	Rate        types.Money `json:"rate"`
}

// TotalsResponse combines quantity and value for a pair.
type TotalsResponse struct {
	ItemID      string         `json:"itemId"`
	WarehouseID string         `json:"warehouseId"`
	Quantity    types.Quantity `json:"quantity"`
	Value       types.Money    `json:"value"`
}

// FromTotals converts aggregate totals.
func FromTotals(itemID, warehouseID string, t ledger.Totals) TotalsResponse {
	return TotalsResponse{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Quantity:    t.Quantity,
		Value:       t.Value,
	}
}
