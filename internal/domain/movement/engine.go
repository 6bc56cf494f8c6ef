package movement

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/ledger"
	"stockledger/pkg/logger"
)

// VoucherPrefix for stock entry numbering (STE-YYYY-NNNNN).
const VoucherPrefix = "STE"

// VoucherNumbers allocates sequential voucher numbers.
// Implemented by pkg/numerator.
type VoucherNumbers interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// Engine turns a validated movement into ledger entries.
//
// Posting is atomic per movement: every (item, warehouse) pair the movement
// touches is locked, availability and valuation are read from committed
// history, and all entries are appended in one batch inside one
// transaction. A failure on any line leaves the ledger untouched.
//
// The engine assumes the movement has already passed Validator.Validate;
// it re-checks nothing structural.
type Engine struct {
	txManager tx.Manager
	repo      ledger.Repository
	valuation *ledger.Service
	numbers   VoucherNumbers
	tracer    trace.Tracer
}

// NewEngine creates a posting engine.
func NewEngine(txManager tx.Manager, repo ledger.Repository, valuation *ledger.Service, numbers VoucherNumbers) *Engine {
	return &Engine{
		txManager: txManager,
		repo:      repo,
		valuation: valuation,
		numbers:   numbers,
		tracer:    otel.Tracer("movement-engine"),
	}
}

// Post appends the movement's ledger entries and returns them.
// The movement's VoucherNo is assigned when blank; retrying a successful
// post will double-post, so callers must dedupe by voucher number.
func (e *Engine) Post(ctx context.Context, m *Movement) ([]entity.LedgerEntry, error) {
	ctx, span := e.tracer.Start(ctx, "movement.post",
		trace.WithAttributes(attribute.String("movement.type", string(m.Type))))
	defer span.End()

	if m.VoucherNo == "" {
		no, err := e.numbers.Next(ctx, VoucherPrefix)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("assign voucher number: %w", err)
		}
		m.VoucherNo = no
	}
	span.SetAttributes(attribute.String("movement.voucher_no", m.VoucherNo))

	var entries []entity.LedgerEntry
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Lock every touched pair first, in deterministic order, so that
		// availability reads below cannot race with a concurrent posting
		// on the same pair.
		for _, p := range m.pairs() {
			if err := e.repo.LockPair(ctx, p.ItemID, p.WarehouseID); err != nil {
				return fmt.Errorf("lock pair: %w", err)
			}
		}

		built, err := e.buildEntries(ctx, m)
		if err != nil {
			return err
		}

		if err := e.repo.Append(ctx, built); err != nil {
			return apperror.NewPosting("failed to append ledger entries", err).
				WithDetail("voucher_no", m.VoucherNo)
		}

		entries = built
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Info(ctx, "movement posted",
		"voucher_no", m.VoucherNo,
		"type", m.Type,
		"entries", len(entries),
	)
	return entries, nil
}

// buildEntries produces the ledger rows for every line of the movement.
//
// Availability and valuation come from committed history only. Quantities
// already claimed by earlier lines of this same movement are tracked in a
// pending map, so a later line cannot draw stock an earlier line has
// already taken even though nothing is committed yet.
func (e *Engine) buildEntries(ctx context.Context, m *Movement) ([]entity.LedgerEntry, error) {
	entries := make([]entity.LedgerEntry, 0, len(m.Items)*2)
	pending := make(map[pair]types.Quantity)

	for _, line := range m.Items {
		switch m.Type {
		case TypeReceipt:
			entries = append(entries, entity.NewLedgerEntry(
				line.ItemID, m.ToWarehouseID, m.PostingDate,
				line.Quantity, line.ValuationRate, m.VoucherNo))
			pending[pair{line.ItemID, m.ToWarehouseID}] += line.Quantity

		case TypeConsume:
			rate, err := e.drawFrom(ctx, line, m.FromWarehouseID, pending)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entity.NewLedgerEntry(
				line.ItemID, m.FromWarehouseID, m.PostingDate,
				line.Quantity.Neg(), rate, m.VoucherNo))

		case TypeTransfer:
			rate, err := e.drawFrom(ctx, line, m.FromWarehouseID, pending)
			if err != nil {
				return nil, err
			}
			// Outbound and inbound rows carry the same rate: a transfer
			// moves value, it never creates or destroys it.
			entries = append(entries,
				entity.NewLedgerEntry(
					line.ItemID, m.FromWarehouseID, m.PostingDate,
					line.Quantity.Neg(), rate, m.VoucherNo),
				entity.NewLedgerEntry(
					line.ItemID, m.ToWarehouseID, m.PostingDate,
					line.Quantity, rate, m.VoucherNo),
			)
			pending[pair{line.ItemID, m.ToWarehouseID}] += line.Quantity
		}
	}

	return entries, nil
}

// drawFrom checks availability for an outbound line, records the draw in
// the pending map and returns the moving-average rate to book it at.
func (e *Engine) drawFrom(ctx context.Context, line Line, warehouseID id.ID, pending map[pair]types.Quantity) (types.Money, error) {
	p := pair{line.ItemID, warehouseID}

	committed, rate, err := e.valuation.Snapshot(ctx, line.ItemID, warehouseID)
	if err != nil {
		return types.Zero(), fmt.Errorf("snapshot %s/%s: %w", line.ItemID, warehouseID, err)
	}

	available := committed + pending[p]
	if line.Quantity > available {
		return types.Zero(), apperror.NewInsufficientStock(
			line.ItemID.String(), line.Quantity.Float64(), available.Float64()).
			WithDetail("warehouse_id", warehouseID.String())
	}

	pending[p] -= line.Quantity
	return rate, nil
}
