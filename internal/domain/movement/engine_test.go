package movement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/ledger"
)

// memLedger is an in-memory ledger.Repository for engine tests.
// Aggregates are computed the same way the SQL implementation does:
// by summing over all stored entries.
type memLedger struct {
	entries   []entity.LedgerEntry
	locked    []string
	appendErr error
}

func (m *memLedger) Append(_ context.Context, entries []entity.LedgerEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memLedger) GetByVoucher(_ context.Context, voucherNo string) ([]entity.LedgerEntry, error) {
	var out []entity.LedgerEntry
	for _, e := range m.entries {
		if e.VoucherNo == voucherNo {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLedger) GetTotals(_ context.Context, itemID, warehouseID id.ID) (ledger.Totals, error) {
	totals := ledger.Totals{Value: types.Zero()}
	for _, e := range m.entries {
		if e.ItemID == itemID && e.WarehouseID == warehouseID {
			totals.Quantity += e.Quantity
			totals.Value = totals.Value.Add(e.Value())
		}
	}
	return totals, nil
}

func (m *memLedger) SumQuantity(ctx context.Context, itemID, warehouseID id.ID) (types.Quantity, error) {
	totals, err := m.GetTotals(ctx, itemID, warehouseID)
	return totals.Quantity, err
}

func (m *memLedger) QuantityAtDate(_ context.Context, itemID, warehouseID id.ID, date time.Time) (types.Quantity, error) {
	var sum types.Quantity
	for _, e := range m.entries {
		if e.ItemID == itemID && e.WarehouseID == warehouseID && !e.PostingDate.After(date) {
			sum += e.Quantity
		}
	}
	return sum, nil
}

func (m *memLedger) History(_ context.Context, itemID id.ID, _ ledger.EntryFilter) ([]entity.LedgerEntry, error) {
	var out []entity.LedgerEntry
	for _, e := range m.entries {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLedger) LockPair(_ context.Context, itemID, warehouseID id.ID) error {
	m.locked = append(m.locked, itemID.String()+"/"+warehouseID.String())
	return nil
}

// passthroughTx runs the function directly. The in-memory repository only
// mutates on Append, which the engine calls last, so a failed posting
// leaves it untouched just like a rolled-back transaction would.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type seqNumbers struct {
	n int
}

func (s *seqNumbers) Next(_ context.Context, prefix string) (string, error) {
	s.n++
	return fmt.Sprintf("%s-2026-%05d", prefix, s.n), nil
}

func newTestEngine() (*Engine, *memLedger) {
	repo := &memLedger{}
	eng := NewEngine(passthroughTx{}, repo, ledger.NewService(repo), &seqNumbers{})
	return eng, repo
}

func postReceipt(t *testing.T, eng *Engine, warehouse id.ID, item id.ID, qty int64, rate string) []entity.LedgerEntry {
	t.Helper()
	m := NewReceipt(warehouse)
	m.PostingDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m.AddLine(item, types.NewQuantityFromInt(qty), types.MustMoney(rate))
	entries, err := eng.Post(context.Background(), m)
	require.NoError(t, err)
	return entries
}

func availableQty(t *testing.T, repo *memLedger, item, warehouse id.ID) types.Quantity {
	t.Helper()
	qty, err := repo.SumQuantity(context.Background(), item, warehouse)
	require.NoError(t, err)
	return qty
}

func TestPost_ReceiptsAccumulate(t *testing.T) {
	eng, repo := newTestEngine()

	postReceipt(t, eng, whMain, itemA, 5, "100")
	postReceipt(t, eng, whMain, itemA, 3, "100")
	postReceipt(t, eng, whMain, itemA, 2, "100")

	assert.Equal(t, types.NewQuantityFromInt(10), availableQty(t, repo, itemA, whMain))
	assert.Len(t, repo.entries, 3)
}

func TestPost_ReceiptThenConsume(t *testing.T) {
	eng, repo := newTestEngine()

	entries := postReceipt(t, eng, whMain, itemA, 5, "10000")
	require.Len(t, entries, 1)
	assert.Equal(t, types.NewQuantityFromInt(5), entries[0].Quantity)
	assert.True(t, entries[0].ValuationRate.Equal(types.MustMoney("10000")))

	consume := NewConsume(whMain)
	consume.PostingDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	consume.AddLine(itemA, types.NewQuantityFromInt(4), types.Zero())

	entries, err := eng.Post(context.Background(), consume)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// The rate is looked up from history, never caller-supplied.
	assert.Equal(t, types.NewQuantityFromInt(-4), entries[0].Quantity)
	assert.True(t, entries[0].ValuationRate.Equal(types.MustMoney("10000")))
	assert.Equal(t, types.NewQuantityFromInt(1), availableQty(t, repo, itemA, whMain))
}

func TestPost_ConsumeInsufficientStock(t *testing.T) {
	eng, repo := newTestEngine()
	postReceipt(t, eng, whMain, itemA, 3, "50")
	before := len(repo.entries)

	consume := NewConsume(whMain)
	consume.PostingDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	consume.AddLine(itemA, types.NewQuantityFromInt(4), types.Zero())

	entries, err := eng.Post(context.Background(), consume)

	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Contains(t, err.Error(), itemA.String())
	assert.Contains(t, err.Error(), "4")
	assert.Contains(t, err.Error(), "3")
	assert.Nil(t, entries)
	assert.Len(t, repo.entries, before, "ledger must be unchanged")
}

func TestPost_MovingAverageValuation(t *testing.T) {
	eng, repo := newTestEngine()

	postReceipt(t, eng, whMain, itemA, 10, "100")
	postReceipt(t, eng, whMain, itemA, 5, "400")

	svc := ledger.NewService(repo)
	rate, err := svc.CurrentValuation(context.Background(), itemA, whMain)
	require.NoError(t, err)

	// (10*100 + 5*400) / 15 = 200
	assert.True(t, rate.Equal(types.MustMoney("200")), "got %s", rate)
}

func TestPost_ValuationZeroWhenNoStock(t *testing.T) {
	eng, repo := newTestEngine()

	postReceipt(t, eng, whMain, itemA, 2, "75")

	consume := NewConsume(whMain)
	consume.PostingDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	consume.AddLine(itemA, types.NewQuantityFromInt(2), types.Zero())
	_, err := eng.Post(context.Background(), consume)
	require.NoError(t, err)

	svc := ledger.NewService(repo)
	rate, err := svc.CurrentValuation(context.Background(), itemA, whMain)
	require.NoError(t, err)
	assert.True(t, rate.IsZero())
}

func TestPost_Transfer(t *testing.T) {
	eng, repo := newTestEngine()
	postReceipt(t, eng, whMain, itemA, 8, "120")

	transfer := NewTransfer(whMain, whSpare)
	transfer.PostingDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	transfer.AddLine(itemA, types.NewQuantityFromInt(3), types.Zero())

	entries, err := eng.Post(context.Background(), transfer)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	outbound, inbound := entries[0], entries[1]
	assert.Equal(t, whMain, outbound.WarehouseID)
	assert.Equal(t, types.NewQuantityFromInt(-3), outbound.Quantity)
	assert.Equal(t, whSpare, inbound.WarehouseID)
	assert.Equal(t, types.NewQuantityFromInt(3), inbound.Quantity)

	// Paired rows book the same rate.
	assert.True(t, outbound.ValuationRate.Equal(inbound.ValuationRate))
	assert.True(t, outbound.ValuationRate.Equal(types.MustMoney("120")))

	assert.Equal(t, types.NewQuantityFromInt(5), availableQty(t, repo, itemA, whMain))
	assert.Equal(t, types.NewQuantityFromInt(3), availableQty(t, repo, itemA, whSpare))
}

func TestPost_TransferAllOrNothing(t *testing.T) {
	eng, repo := newTestEngine()
	postReceipt(t, eng, whMain, itemA, 10, "100")
	postReceipt(t, eng, whMain, itemB, 1, "100")
	before := len(repo.entries)

	transfer := NewTransfer(whMain, whSpare)
	transfer.PostingDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	transfer.AddLine(itemA, types.NewQuantityFromInt(5), types.Zero())
	transfer.AddLine(itemB, types.NewQuantityFromInt(2), types.Zero())

	_, err := eng.Post(context.Background(), transfer)

	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Len(t, repo.entries, before, "no entry from any line may be visible")
}

func TestPost_LaterLineSeesEarlierDraw(t *testing.T) {
	// Two lines of one movement draw from the same pair. Each fits on its
	// own, together they overdraw. The movement must fail as a whole.
	eng, repo := newTestEngine()
	postReceipt(t, eng, whMain, itemA, 5, "100")
	before := len(repo.entries)

	consume := NewConsume(whMain)
	consume.PostingDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	consume.AddLine(itemA, types.NewQuantityFromInt(3), types.Zero())
	consume.AddLine(itemA, types.NewQuantityFromInt(3), types.Zero())

	_, err := eng.Post(context.Background(), consume)

	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Len(t, repo.entries, before)
}

func TestPost_MultiLineConsumeWithinStock(t *testing.T) {
	eng, repo := newTestEngine()
	postReceipt(t, eng, whMain, itemA, 5, "100")

	consume := NewConsume(whMain)
	consume.PostingDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	consume.AddLine(itemA, types.NewQuantityFromInt(2), types.Zero())
	consume.AddLine(itemA, types.NewQuantityFromInt(3), types.Zero())

	entries, err := eng.Post(context.Background(), consume)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.True(t, availableQty(t, repo, itemA, whMain).IsZero())
}

func TestPost_AssignsVoucherNumber(t *testing.T) {
	eng, repo := newTestEngine()

	m := NewReceipt(whMain)
	m.PostingDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m.AddLine(itemA, types.NewQuantityFromInt(1), types.MustMoney("10"))

	entries, err := eng.Post(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, "STE-2026-00001", m.VoucherNo)
	assert.Equal(t, "STE-2026-00001", entries[0].VoucherNo)
	assert.Equal(t, entity.VoucherTypeStockEntry, entries[0].VoucherType)

	got, err := repo.GetByVoucher(context.Background(), "STE-2026-00001")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPost_KeepsProvidedVoucherNumber(t *testing.T) {
	eng, _ := newTestEngine()

	m := NewReceipt(whMain)
	m.VoucherNo = "STE-2026-00042"
	m.PostingDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m.AddLine(itemA, types.NewQuantityFromInt(1), types.MustMoney("10"))

	entries, err := eng.Post(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, "STE-2026-00042", entries[0].VoucherNo)
}

func TestPost_LocksEveryTouchedPair(t *testing.T) {
	eng, repo := newTestEngine()
	postReceipt(t, eng, whMain, itemA, 5, "100")
	repo.locked = nil

	transfer := NewTransfer(whMain, whSpare)
	transfer.PostingDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	transfer.AddLine(itemA, types.NewQuantityFromInt(1), types.Zero())

	_, err := eng.Post(context.Background(), transfer)
	require.NoError(t, err)

	require.Len(t, repo.locked, 2)
	assert.Contains(t, repo.locked, itemA.String()+"/"+whMain.String())
	assert.Contains(t, repo.locked, itemA.String()+"/"+whSpare.String())
}

func TestPost_AppendFailureIsPostingError(t *testing.T) {
	eng, repo := newTestEngine()
	repo.appendErr = errors.New("connection reset")

	m := NewReceipt(whMain)
	m.PostingDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m.AddLine(itemA, types.NewQuantityFromInt(1), types.MustMoney("10"))

	_, err := eng.Post(context.Background(), m)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePosting, appErr.Code)
	assert.Empty(t, repo.entries)
}

func TestPairs_SortedAndDeduplicated(t *testing.T) {
	m := NewConsume(whMain)
	m.AddLine(itemA, types.NewQuantityFromInt(1), types.Zero())
	m.AddLine(itemA, types.NewQuantityFromInt(2), types.Zero())
	m.AddLine(itemB, types.NewQuantityFromInt(1), types.Zero())

	ps := m.pairs()

	require.Len(t, ps, 2)
	assert.True(t, lessPair(ps[0], ps[1]) || ps[0] == ps[1])
}
