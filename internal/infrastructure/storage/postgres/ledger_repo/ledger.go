// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger repository.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

const ledgerTable = "ledger_entries"

var ledgerColumns = []string{
	"line_id", "item_id", "warehouse_id", "posting_date",
	"quantity", "valuation_rate", "voucher_type", "voucher_no", "created_at",
}

// Compile-time check.
var _ ledger.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Repository.
//
// Quantities are stored as BIGINT scaled by 1e4 (types.Quantity), rates as
// NUMERIC. Aggregates therefore sum quantity directly and rescale only when
// multiplying with the rate.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append inserts all entries as one batch.
// Inside a transaction the COPY protocol is used; entries then become
// visible only when the surrounding transaction commits.
func (r *LedgerRepo) Append(ctx context.Context, entries []entity.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{
			e.LineID, e.ItemID, e.WarehouseID, e.PostingDate,
			e.Quantity.Int64Scaled(), e.ValuationRate, e.VoucherType, e.VoucherNo, e.CreatedAt,
		})
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		if _, err := inserter.CopyFromSlice(ctx, ledgerTable, ledgerColumns, rows); err != nil {
			return fmt.Errorf("copy ledger entries: %w", err)
		}
		return nil
	}

	// Fallback: plain multi-row insert. Prefer calling Append within tx.
	q := r.builder.Insert(ledgerTable).Columns(ledgerColumns...)
	for _, row := range rows {
		q = q.Values(row...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger entries: %w", err)
	}

	return nil
}

// GetByVoucher retrieves all entries produced by one movement.
func (r *LedgerRepo) GetByVoucher(ctx context.Context, voucherNo string) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(ledgerColumns...).
		From(ledgerTable).
		Where(squirrel.Eq{"voucher_no": voucherNo}).
		OrderBy("created_at", "line_id")

	return r.selectEntries(ctx, q)
}

// GetTotals returns the on-hand quantity and stock value for a pair.
// With no matching rows both sums are zero, not NULL.
func (r *LedgerRepo) GetTotals(ctx context.Context, itemID, warehouseID id.ID) (ledger.Totals, error) {
	q := r.builder.Select(
		"COALESCE(SUM(quantity), 0) AS total_quantity",
		fmt.Sprintf("COALESCE(SUM((quantity::numeric / %d) * valuation_rate), 0) AS total_value", types.QuantityScale),
	).From(ledgerTable).
		Where(squirrel.Eq{
			"item_id":      itemID,
			"warehouse_id": warehouseID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("build query: %w", err)
	}

	var totals ledger.Totals
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &totals, sql, args...); err != nil {
		return ledger.Totals{}, fmt.Errorf("get totals: %w", err)
	}

	return totals, nil
}

// SumQuantity returns SUM(quantity) for a pair.
func (r *LedgerRepo) SumQuantity(ctx context.Context, itemID, warehouseID id.ID) (types.Quantity, error) {
	q := r.builder.Select("COALESCE(SUM(quantity), 0)").
		From(ledgerTable).
		Where(squirrel.Eq{
			"item_id":      itemID,
			"warehouse_id": warehouseID,
		})

	return r.sumQuantity(ctx, q)
}

// QuantityAtDate returns the on-hand quantity as of a posting date.
func (r *LedgerRepo) QuantityAtDate(ctx context.Context, itemID, warehouseID id.ID, date time.Time) (types.Quantity, error) {
	q := r.builder.Select("COALESCE(SUM(quantity), 0)").
		From(ledgerTable).
		Where(squirrel.Eq{
			"item_id":      itemID,
			"warehouse_id": warehouseID,
		}).
		Where(squirrel.LtOrEq{"posting_date": date})

	return r.sumQuantity(ctx, q)
}

// History returns ledger entries for an item with optional filters.
func (r *LedgerRepo) History(ctx context.Context, itemID id.ID, filter ledger.EntryFilter) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(ledgerColumns...).
		From(ledgerTable).
		Where(squirrel.Eq{"item_id": itemID})

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.VoucherNo != "" {
		q = q.Where(squirrel.Eq{"voucher_no": filter.VoucherNo})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"posting_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"posting_date": *filter.ToDate})
	}

	q = q.OrderBy("posting_date", "created_at", "line_id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return r.selectEntries(ctx, q)
}

// LockPair takes a transaction-scoped advisory lock on an (item, warehouse)
// pair. The lock is released on commit or rollback; a concurrent posting of
// the same pair blocks here until then. Requires an active transaction,
// otherwise the lock would be held for the connection's lifetime.
func (r *LedgerRepo) LockPair(ctx context.Context, itemID, warehouseID id.ID) error {
	if r.txManager.GetTx(ctx) == nil {
		return fmt.Errorf("LockPair requires transaction context")
	}

	key := itemID.String() + "/" + warehouseID.String()
	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key); err != nil {
		return fmt.Errorf("advisory lock %s: %w", key, err)
	}

	return nil
}

// --- helpers ---

func (r *LedgerRepo) selectEntries(ctx context.Context, q squirrel.SelectBuilder) ([]entity.LedgerEntry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []entity.LedgerEntry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}

	return entries, nil
}

func (r *LedgerRepo) sumQuantity(ctx context.Context, q squirrel.SelectBuilder) (types.Quantity, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var sum int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum quantity: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(sum), nil
}
