// Package movement provides the stock movement document and its posting
// engine: the validation and ledger-append logic behind receipts,
// consumption and transfers.
package movement

import (
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Type is the closed set of movement kinds.
type Type string

const (
	// TypeReceipt brings new stock into a warehouse at a caller-declared rate.
	TypeReceipt Type = "receipt"
	// TypeConsume removes stock from a warehouse at the looked-up rate.
	TypeConsume Type = "consume"
	// TypeTransfer moves stock between two warehouses at the source's rate.
	TypeTransfer Type = "transfer"
)

// IsValid reports whether t is a known movement type.
func (t Type) IsValid() bool {
	switch t {
	case TypeReceipt, TypeConsume, TypeTransfer:
		return true
	}
	return false
}

// Movement is the transactional unit submitted by a caller. It is not
// persisted itself; posting it produces immutable ledger entries tagged
// with its voucher number. A movement is validated once, then posted
// exactly once. There is no update or cancellation path: corrections are
// new counter-movements.
type Movement struct {
	// Type determines which warehouse fields are required
	Type Type `json:"type"`

	// FromWarehouseID is required for Consume and Transfer, forbidden for Receipt
	FromWarehouseID id.ID `json:"fromWarehouseId,omitempty"`

	// ToWarehouseID is required for Receipt and Transfer, forbidden for Consume
	ToWarehouseID id.ID `json:"toWarehouseId,omitempty"`

	// PostingDate defaults to today when zero; never in the future
	PostingDate time.Time `json:"postingDate"`

	// VoucherNo ties the produced ledger entries together.
	// Assigned by the posting engine when blank.
	VoucherNo string `json:"voucherNo,omitempty"`

	// Items is the ordered table part of the movement
	Items []Line `json:"items"`
}

// Line is one row of a movement.
type Line struct {
	ItemID id.ID `json:"itemId"`

	// Quantity must be positive; the sign of the resulting ledger rows
	// is determined by the movement type, not the caller
	Quantity types.Quantity `json:"quantity"`

	// ValuationRate is required (and > 0) for Receipt lines only.
	// Consume and Transfer rates are looked up from the ledger.
	ValuationRate types.Money `json:"valuationRate,omitempty"`
}

// NewReceipt creates a receipt movement into a warehouse.
func NewReceipt(toWarehouseID id.ID) *Movement {
	return &Movement{
		Type:          TypeReceipt,
		ToWarehouseID: toWarehouseID,
		Items:         make([]Line, 0),
	}
}

// NewConsume creates a consumption movement out of a warehouse.
func NewConsume(fromWarehouseID id.ID) *Movement {
	return &Movement{
		Type:            TypeConsume,
		FromWarehouseID: fromWarehouseID,
		Items:           make([]Line, 0),
	}
}

// NewTransfer creates a transfer movement between two warehouses.
func NewTransfer(fromWarehouseID, toWarehouseID id.ID) *Movement {
	return &Movement{
		Type:            TypeTransfer,
		FromWarehouseID: fromWarehouseID,
		ToWarehouseID:   toWarehouseID,
		Items:           make([]Line, 0),
	}
}

// AddLine appends a line to the movement.
func (m *Movement) AddLine(itemID id.ID, quantity types.Quantity, valuationRate types.Money) {
	m.Items = append(m.Items, Line{
		ItemID:        itemID,
		Quantity:      quantity,
		ValuationRate: valuationRate,
	})
}

// pair identifies one (item, warehouse) dimension of the ledger.
type pair struct {
	ItemID      id.ID
	WarehouseID id.ID
}

// pairs returns the unique (item, warehouse) pairs this movement touches,
// in deterministic order. Used for lock acquisition: locking pairs in a
// stable order prevents deadlocks between concurrent movements.
func (m *Movement) pairs() []pair {
	seen := make(map[pair]struct{})
	result := make([]pair, 0, len(m.Items)*2)

	add := func(itemID, warehouseID id.ID) {
		p := pair{ItemID: itemID, WarehouseID: warehouseID}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}

	for _, line := range m.Items {
		switch m.Type {
		case TypeReceipt:
			add(line.ItemID, m.ToWarehouseID)
		case TypeConsume:
			add(line.ItemID, m.FromWarehouseID)
		case TypeTransfer:
			add(line.ItemID, m.FromWarehouseID)
			add(line.ItemID, m.ToWarehouseID)
		}
	}

	sortPairs(result)
	return result
}

func sortPairs(ps []pair) {
	// Insertion sort on the 32-byte key; movements have few pairs.
	for i := 1; i < len(ps); i++ {
		for j := i; j > 0 && lessPair(ps[j], ps[j-1]); j-- {
			ps[j], ps[j-1] = ps[j-1], ps[j]
		}
	}
}

func lessPair(a, b pair) bool {
	if a.ItemID != b.ItemID {
		return a.ItemID.String() < b.ItemID.String()
	}
	return a.WarehouseID.String() < b.WarehouseID.String()
}
