package movement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// fakeWarehouses is an in-memory WarehouseLookup.
// Maps warehouse ID to leaf status; unknown IDs return NOT_FOUND.
type fakeWarehouses struct {
	leaf map[id.ID]bool
}

func (f *fakeWarehouses) IsLeaf(_ context.Context, warehouseID id.ID) (bool, error) {
	isLeaf, ok := f.leaf[warehouseID]
	if !ok {
		return false, apperror.NewNotFound("warehouse", warehouseID.String())
	}
	return isLeaf, nil
}

func newTestValidator(leaf map[id.ID]bool) *Validator {
	v := NewValidator(&fakeWarehouses{leaf: leaf})
	v.now = func() time.Time {
		return time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	}
	return v
}

var (
	whMain  = id.MustParse("018f0000-0000-7000-8000-000000000001")
	whSpare = id.MustParse("018f0000-0000-7000-8000-000000000002")
	whGroup = id.MustParse("018f0000-0000-7000-8000-000000000003")
	itemA   = id.MustParse("018f0000-0000-7000-8000-0000000000aa")
	itemB   = id.MustParse("018f0000-0000-7000-8000-0000000000bb")
)

func leafSetup() map[id.ID]bool {
	return map[id.ID]bool{
		whMain:  true,
		whSpare: true,
		whGroup: false,
	}
}

func validReceipt() *Movement {
	m := NewReceipt(whMain)
	m.AddLine(itemA, types.NewQuantityFromInt(5), types.MustMoney("10000"))
	return m
}

func TestValidate_DefaultsPostingDate(t *testing.T) {
	v := newTestValidator(leafSetup())
	m := validReceipt()

	require.NoError(t, v.Validate(context.Background(), m))

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), m.PostingDate)
}

func TestValidate_NormalizesPostingDateToMidnight(t *testing.T) {
	v := newTestValidator(leafSetup())
	m := validReceipt()
	m.PostingDate = time.Date(2026, 3, 10, 18, 45, 12, 0, time.UTC)

	require.NoError(t, v.Validate(context.Background(), m))

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), m.PostingDate)
}

func TestValidate_RejectsFutureDate(t *testing.T) {
	v := newTestValidator(leafSetup())
	m := validReceipt()
	m.PostingDate = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	err := v.Validate(context.Background(), m)

	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "future")
}

func TestValidate_TodayIsAllowed(t *testing.T) {
	v := newTestValidator(leafSetup())
	m := validReceipt()
	// Late in the day but still today.
	m.PostingDate = time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)

	assert.NoError(t, v.Validate(context.Background(), m))
}

func TestValidate_RejectsEmptyItems(t *testing.T) {
	v := newTestValidator(leafSetup())
	m := NewReceipt(whMain)

	err := v.Validate(context.Background(), m)

	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "no items")
}

func TestValidate_RejectsNonPositiveQuantity(t *testing.T) {
	tests := []struct {
		name string
		qty  types.Quantity
	}{
		{"zero", 0},
		{"negative", types.NewQuantityFromInt(-3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(leafSetup())
			m := NewReceipt(whMain)
			m.AddLine(itemA, types.NewQuantityFromInt(1), types.MustMoney("10"))
			m.AddLine(itemB, tt.qty, types.MustMoney("10"))

			err := v.Validate(context.Background(), m)

			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			// The failing line's item must be named in the message.
			assert.Contains(t, err.Error(), itemB.String())
		})
	}
}

func TestValidate_Receipt(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		assert.NoError(t, v.Validate(context.Background(), validReceipt()))
	})

	t.Run("missing target warehouse", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := validReceipt()
		m.ToWarehouseID = id.Nil()

		err := v.Validate(context.Background(), m)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("source warehouse forbidden", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := validReceipt()
		m.FromWarehouseID = whSpare

		err := v.Validate(context.Background(), m)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("group warehouse rejected", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := NewReceipt(whGroup)
		m.AddLine(itemA, types.NewQuantityFromInt(1), types.MustMoney("10"))

		err := v.Validate(context.Background(), m)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
		assert.Contains(t, err.Error(), "group")
	})

	t.Run("unknown warehouse is not found", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := NewReceipt(id.New())
		m.AddLine(itemA, types.NewQuantityFromInt(1), types.MustMoney("10"))

		err := v.Validate(context.Background(), m)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("valuation rate required", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := NewReceipt(whMain)
		m.AddLine(itemA, types.NewQuantityFromInt(1), types.Zero())

		err := v.Validate(context.Background(), m)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
		assert.Contains(t, err.Error(), "valuation rate")
	})
}

func TestValidate_Consume(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := NewConsume(whMain)
		m.AddLine(itemA, types.NewQuantityFromInt(2), types.Zero())

		assert.NoError(t, v.Validate(context.Background(), m))
	})

	t.Run("missing source warehouse", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := NewConsume(id.Nil())
		m.AddLine(itemA, types.NewQuantityFromInt(2), types.Zero())

		err := v.Validate(context.Background(), m)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("target warehouse forbidden", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := NewConsume(whMain)
		m.ToWarehouseID = whSpare
		m.AddLine(itemA, types.NewQuantityFromInt(2), types.Zero())

		err := v.Validate(context.Background(), m)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("group warehouse rejected", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := NewConsume(whGroup)
		m.AddLine(itemA, types.NewQuantityFromInt(2), types.Zero())

		err := v.Validate(context.Background(), m)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestValidate_Transfer(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := NewTransfer(whMain, whSpare)
		m.AddLine(itemA, types.NewQuantityFromInt(2), types.Zero())

		assert.NoError(t, v.Validate(context.Background(), m))
	})

	t.Run("same warehouse rejected", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := NewTransfer(whMain, whMain)
		m.AddLine(itemA, types.NewQuantityFromInt(2), types.Zero())

		err := v.Validate(context.Background(), m)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
		assert.Contains(t, err.Error(), "differ")
	})

	t.Run("group source rejected", func(t *testing.T) {
		v := newTestValidator(leafSetup())
		m := NewTransfer(whGroup, whSpare)
		m.AddLine(itemA, types.NewQuantityFromInt(2), types.Zero())

		err := v.Validate(context.Background(), m)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("group target rejected even with leaf source", func(t *testing.T) {
		// The target must be checked on its own, not assumed valid
		// because the source passed.
		v := newTestValidator(leafSetup())
		m := NewTransfer(whMain, whGroup)
		m.AddLine(itemA, types.NewQuantityFromInt(2), types.Zero())

		err := v.Validate(context.Background(), m)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
		assert.Contains(t, err.Error(), "target")
	})
}

func TestValidate_UnknownType(t *testing.T) {
	v := newTestValidator(leafSetup())
	m := &Movement{Type: Type("adjustment")}

	err := v.Validate(context.Background(), m)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
