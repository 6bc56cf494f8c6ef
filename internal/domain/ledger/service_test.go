package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

type stubRepo struct {
	Repository

	totals    Totals
	totalsErr error
	sum       types.Quantity
	sumErr    error
	history   []entity.LedgerEntry
}

func (r *stubRepo) GetTotals(ctx context.Context, itemID, warehouseID id.ID) (Totals, error) {
	return r.totals, r.totalsErr
}

func (r *stubRepo) SumQuantity(ctx context.Context, itemID, warehouseID id.ID) (types.Quantity, error) {
	return r.sum, r.sumErr
}

func (r *stubRepo) QuantityAtDate(ctx context.Context, itemID, warehouseID id.ID, date time.Time) (types.Quantity, error) {
	return r.sum, r.sumErr
}

func (r *stubRepo) History(ctx context.Context, itemID id.ID, filter EntryFilter) ([]entity.LedgerEntry, error) {
	return r.history, nil
}

var (
	testItem = id.MustParse("018f0000-0000-7000-8000-000000000001")
	testWh   = id.MustParse("018f0000-0000-7000-8000-000000000011")
)

func TestCurrentValuation_MovingAverage(t *testing.T) {
	// 10 units at 100 plus 5 units at 400: (10*100 + 5*400) / 15 = 200.
	repo := &stubRepo{totals: Totals{
		Quantity: types.NewQuantityFromInt(15),
		Value:    types.MustMoney("3000"),
	}}
	svc := NewService(repo)

	rate, err := svc.CurrentValuation(context.Background(), testItem, testWh)
	require.NoError(t, err)
	assert.True(t, rate.Equal(types.MustMoney("200")), "got %s", rate)
}

func TestCurrentValuation_ZeroStock(t *testing.T) {
	tests := []struct {
		name   string
		totals Totals
	}{
		{"empty history", Totals{Quantity: 0, Value: types.Zero()}},
		{"fully consumed", Totals{Quantity: 0, Value: types.MustMoney("0")}},
		{"driven negative", Totals{Quantity: types.NewQuantityFromInt(-2), Value: types.MustMoney("-500")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&stubRepo{totals: tt.totals})

			rate, err := svc.CurrentValuation(context.Background(), testItem, testWh)
			require.NoError(t, err)
			assert.True(t, rate.IsZero(), "rate must be zero without positive stock, got %s", rate)
		})
	}
}

func TestCurrentValuation_RepoError(t *testing.T) {
	svc := NewService(&stubRepo{totalsErr: errors.New("connection reset")})

	_, err := svc.CurrentValuation(context.Background(), testItem, testWh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get totals")
}

func TestAvailableQuantity(t *testing.T) {
	svc := NewService(&stubRepo{sum: types.NewQuantityFromFloat64(7.25)})

	qty, err := svc.AvailableQuantity(context.Background(), testItem, testWh)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(7.25), qty)
}

func TestSnapshot_ConsistentPair(t *testing.T) {
	repo := &stubRepo{totals: Totals{
		Quantity: types.NewQuantityFromInt(4),
		Value:    types.MustMoney("50"),
	}}
	svc := NewService(repo)

	qty, rate, err := svc.Snapshot(context.Background(), testItem, testWh)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(4), qty)
	assert.True(t, rate.Equal(types.MustMoney("12.5")), "got %s", rate)
}

func TestSnapshot_NoStockYieldsZeroRate(t *testing.T) {
	svc := NewService(&stubRepo{totals: Totals{Quantity: 0, Value: types.Zero()}})

	qty, rate, err := svc.Snapshot(context.Background(), testItem, testWh)
	require.NoError(t, err)
	assert.True(t, qty.IsZero())
	assert.True(t, rate.IsZero())
}
