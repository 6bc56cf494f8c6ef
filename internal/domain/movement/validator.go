package movement

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

// WarehouseLookup resolves warehouse leaf status from master data.
// Returns a NOT_FOUND AppError when the warehouse does not exist.
type WarehouseLookup interface {
	IsLeaf(ctx context.Context, warehouseID id.ID) (bool, error)
}

// Validator enforces structural and business rules on a movement before
// posting. Rules run in a fixed order; the first failure wins and is
// returned as a VALIDATION_ERROR (or NOT_FOUND for unknown warehouses).
//
// The only state the validator touches is the movement's PostingDate,
// which is defaulted to today and normalized to UTC midnight.
type Validator struct {
	warehouses WarehouseLookup

	// now is swappable for tests
	now func() time.Time
}

// NewValidator creates a movement validator.
func NewValidator(warehouses WarehouseLookup) *Validator {
	return &Validator{
		warehouses: warehouses,
		now:        time.Now,
	}
}

// Validate checks the movement and normalizes its posting date.
// Returns nil when the movement may be posted.
func (v *Validator) Validate(ctx context.Context, m *Movement) error {
	if !m.Type.IsValid() {
		return apperror.NewValidation(fmt.Sprintf("unknown movement type %q", m.Type))
	}

	today := truncateToDate(v.now().UTC())

	// Rule 1: default and normalize the posting date.
	if m.PostingDate.IsZero() {
		m.PostingDate = today
	} else {
		m.PostingDate = truncateToDate(m.PostingDate.UTC())
	}

	// Rule 2: no future-dated movements.
	if m.PostingDate.After(today) {
		return apperror.NewValidation("posting date cannot be in the future").
			WithDetail("posting_date", m.PostingDate.Format("2006-01-02"))
	}

	// Rule 3: the table part must not be empty.
	if len(m.Items) == 0 {
		return apperror.NewValidation("movement has no items")
	}

	// Rule 4: every line needs a positive quantity.
	for i, line := range m.Items {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation(fmt.Sprintf("line %d: item is required", i+1))
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation(
				fmt.Sprintf("line %d: quantity must be positive for item %s", i+1, line.ItemID)).
				WithDetail("item_id", line.ItemID.String())
		}
	}

	// Rule 5: type-specific warehouse rules.
	switch m.Type {
	case TypeReceipt:
		return v.validateReceipt(ctx, m)
	case TypeConsume:
		return v.validateConsume(ctx, m)
	case TypeTransfer:
		return v.validateTransfer(ctx, m)
	}
	return nil
}

func (v *Validator) validateReceipt(ctx context.Context, m *Movement) error {
	if id.IsNil(m.ToWarehouseID) {
		return apperror.NewValidation("target warehouse is required for a receipt")
	}
	if !id.IsNil(m.FromWarehouseID) {
		return apperror.NewValidation("source warehouse must be empty for a receipt")
	}
	if err := v.requireLeaf(ctx, m.ToWarehouseID, "target"); err != nil {
		return err
	}
	for i, line := range m.Items {
		if !line.ValuationRate.IsPositive() {
			return apperror.NewValidation(
				fmt.Sprintf("line %d: valuation rate must be positive for item %s", i+1, line.ItemID)).
				WithDetail("item_id", line.ItemID.String())
		}
	}
	return nil
}

func (v *Validator) validateConsume(ctx context.Context, m *Movement) error {
	if id.IsNil(m.FromWarehouseID) {
		return apperror.NewValidation("source warehouse is required for consumption")
	}
	if !id.IsNil(m.ToWarehouseID) {
		return apperror.NewValidation("target warehouse must be empty for consumption")
	}
	return v.requireLeaf(ctx, m.FromWarehouseID, "source")
}

func (v *Validator) validateTransfer(ctx context.Context, m *Movement) error {
	if id.IsNil(m.FromWarehouseID) {
		return apperror.NewValidation("source warehouse is required for a transfer")
	}
	if id.IsNil(m.ToWarehouseID) {
		return apperror.NewValidation("target warehouse is required for a transfer")
	}
	if m.FromWarehouseID == m.ToWarehouseID {
		return apperror.NewValidation("source and target warehouses must differ")
	}
	// Each warehouse is checked on its own: a transfer into a group node
	// must fail even when the source is a valid leaf.
	if err := v.requireLeaf(ctx, m.FromWarehouseID, "source"); err != nil {
		return err
	}
	return v.requireLeaf(ctx, m.ToWarehouseID, "target")
}

// requireLeaf fails unless the warehouse exists and is a leaf node.
// Group warehouses only structure the hierarchy; they cannot hold stock.
func (v *Validator) requireLeaf(ctx context.Context, warehouseID id.ID, role string) error {
	leaf, err := v.warehouses.IsLeaf(ctx, warehouseID)
	if err != nil {
		return err
	}
	if !leaf {
		return apperror.NewValidation(
			fmt.Sprintf("%s warehouse %s is a group and cannot hold stock", role, warehouseID)).
			WithDetail("warehouse_id", warehouseID.String())
	}
	return nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
