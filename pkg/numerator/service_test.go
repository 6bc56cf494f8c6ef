package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64 // Simulates DB sequence value
	lastIncr     int64 // Track last increment passed
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Strict passes (key); cached passes (key, increment).
	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	m.lastIncr = increment

	return &mockRow{val: m.currentValue}
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("STE")
	year := time.Now().Format("2006")

	// 1. First call
	num, err := svc.GetNextNumber(ctx, cfg, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "STE-"+year+"-00001" { // mock starts at 1
		t.Errorf("expected STE-%s-00001, got %s", year, num)
	}

	// 2. Second call
	num, err = svc.GetNextNumber(ctx, cfg, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "STE-"+year+"-00002" {
		t.Errorf("expected STE-%s-00002, got %s", year, num)
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("STE")
	year := time.Now().Format("2006")

	opts := &Options{
		Strategy:  StrategyCached,
		RangeSize: 10,
	}

	// First call triggers a DB fetch (allocates 1..10).
	num, err := svc.GetNextNumber(ctx, cfg, opts, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "STE-"+year+"-00001" {
		t.Errorf("expected STE-%s-00001, got %s", year, num)
	}
	if q.lastIncr != 10 {
		t.Errorf("expected range of 10 reserved, got %d", q.lastIncr)
	}

	// Next nine calls come from memory without touching the DB value.
	before := q.currentValue
	for i := 2; i <= 10; i++ {
		if _, err := svc.GetNextNumber(ctx, cfg, opts, time.Now()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if q.currentValue != before {
		t.Errorf("expected no DB access while range lasts, value moved %d -> %d", before, q.currentValue)
	}

	// Eleventh call refills the range.
	num, err = svc.GetNextNumber(ctx, cfg, opts, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "STE-"+year+"-00011" {
		t.Errorf("expected STE-%s-00011, got %s", year, num)
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]int64{
		"STE-2026-00042": 42,
		"STE-00007":      7,
		"garbage":        -1,
		"STE-2026-":      -1,
		"STE-2026-xx":    -1,
		"":               -1,
	}

	for input, expected := range cases {
		if got := ParseNumber(input); got != expected {
			t.Errorf("ParseNumber(%q) = %d, expected %d", input, got, expected)
		}
	}
}
