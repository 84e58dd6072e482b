package journal

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lm-mirror-bot/internal/strategy"
)

func TestRecordAndTail(t *testing.T) {
	store, err := New(":memory:", nil)
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}
	defer store.Close()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.RecordCommand(strategy.Command{
		Time:    base,
		Action:  strategy.CommandPlace,
		Pair:    "alpha:BTC-USDT",
		Side:    "BUY",
		OrderID: "ord-1",
		Price:   decimal.RequireFromString("100.5"),
		Amount:  decimal.RequireFromString("2"),
	})
	store.RecordCommand(strategy.Command{
		Time:    base.Add(time.Second),
		Action:  strategy.CommandCancel,
		Pair:    "alpha:BTC-USDT",
		Side:    "BUY",
		OrderID: "ord-1",
	})

	got, err := store.Tail(context.Background(), 10)
	if err != nil {
		t.Fatalf("tailing journal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(got))
	}
	if got[0].Action != strategy.CommandCancel {
		t.Fatalf("tail must be newest first, got %s", got[0].Action)
	}
	place := got[1]
	if place.OrderID != "ord-1" || place.Pair != "alpha:BTC-USDT" {
		t.Fatalf("unexpected command %+v", place)
	}
	if !place.Price.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("price must round-trip, got %s", place.Price)
	}
	if !place.Time.Equal(base) {
		t.Fatalf("timestamp must round-trip, got %v", place.Time)
	}
}

func TestTailHonoursLimit(t *testing.T) {
	store, err := New(":memory:", nil)
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}
	defer store.Close()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		store.RecordCommand(strategy.Command{
			Time:   base.Add(time.Duration(i) * time.Second),
			Action: strategy.CommandPlace,
			Pair:   "alpha:BTC-USDT",
			Side:   "SELL",
		})
	}
	got, err := store.Tail(context.Background(), 3)
	if err != nil {
		t.Fatalf("tailing journal: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(got))
	}
	if !got[0].Time.Equal(base.Add(4 * time.Second)) {
		t.Fatalf("expected the newest command first, got %v", got[0].Time)
	}
}
