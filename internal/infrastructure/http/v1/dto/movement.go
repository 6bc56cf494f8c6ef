package dto

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/movement"
)

// PostingDateLayout is the accepted calendar-date format.
const PostingDateLayout = "2006-01-02"

// MovementLineRequest is one row of a movement request.
type MovementLineRequest struct {
	ItemID   string         `json:"itemId" binding:"required"`
	Quantity types.Quantity `json:"quantity"`

	// ValuationRate is required for receipts only
	ValuationRate types.Money `json:"valuationRate"`
}

// MovementRequest is a proposed stock movement.
type MovementRequest struct {
	Type            string                `json:"type" binding:"required"`
	FromWarehouseID string                `json:"fromWarehouseId"`
	ToWarehouseID   string                `json:"toWarehouseId"`
	PostingDate     string                `json:"postingDate"`
	VoucherNo       string                `json:"voucherNo"`
	Items           []MovementLineRequest `json:"items"`
}

// ToMovement converts the request into a domain movement.
// Structural parsing only; business rules are the validator's job.
func (r *MovementRequest) ToMovement() (*movement.Movement, error) {
	m := &movement.Movement{
		Type:      movement.Type(r.Type),
		VoucherNo: r.VoucherNo,
		Items:     make([]movement.Line, 0, len(r.Items)),
	}

	var err error
	if m.FromWarehouseID, err = parseOptionalID(r.FromWarehouseID); err != nil {
		return nil, apperror.NewValidation("invalid fromWarehouseId").
			WithDetail("value", r.FromWarehouseID)
	}
	if m.ToWarehouseID, err = parseOptionalID(r.ToWarehouseID); err != nil {
		return nil, apperror.NewValidation("invalid toWarehouseId").
			WithDetail("value", r.ToWarehouseID)
	}

	if r.PostingDate != "" {
		date, err := time.Parse(PostingDateLayout, r.PostingDate)
		if err != nil {
			return nil, apperror.NewValidation("invalid postingDate, expected YYYY-MM-DD").
				WithDetail("value", r.PostingDate)
		}
		m.PostingDate = date
	}

	for i, line := range r.Items {
		itemID, err := id.Parse(line.ItemID)
		if err != nil {
			return nil, apperror.NewValidation("invalid itemId").
				WithDetail("line", i+1).
				WithDetail("value", line.ItemID)
		}
		m.AddLine(itemID, line.Quantity, line.ValuationRate)
	}

	return m, nil
}

func parseOptionalID(s string) (id.ID, error) {
	if s == "" {
		return id.Nil(), nil
	}
	return id.Parse(s)
}

// ValidateMovementResponse reports the validation outcome.
type ValidateMovementResponse struct {
	Valid bool `json:"valid"`

	// PostingDate is the normalized date the movement would post under
	PostingDate string `json:"postingDate,omitempty"`

	Error *ErrorResponse `json:"error,omitempty"`
}

// PostMovementResponse returns the produced ledger entries.
type PostMovementResponse struct {
	VoucherNo string                `json:"voucherNo"`
	Entries   []LedgerEntryResponse `json:"entries"`
}
