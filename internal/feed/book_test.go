package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lm-mirror-bot/internal/market"
)

var testPair = market.Pair{Market: "beta", Base: "BTC", Quote: "USDT"}

func bookJSON(t *testing.T, bids, asks [][2]string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"channel": "orderbook",
		"market":  testPair.Market,
		"base":    testPair.Base,
		"quote":   testPair.Quote,
		"bids":    bids,
		"asks":    asks,
	})
	if err != nil {
		t.Fatalf("marshalling message: %v", err)
	}
	return raw
}

func TestHandleMessageStoresSnapshot(t *testing.T) {
	books := NewBooks(30*time.Second, nil)
	books.HandleMessage(bookJSON(t,
		[][2]string{{"100", "2"}, {"99.5", "4"}},
		[][2]string{{"102", "3"}},
	))

	bids := books.BidEntries(testPair)
	if len(bids) != 2 {
		t.Fatalf("expected 2 bid levels, got %d", len(bids))
	}
	best, ok := market.BestBid(bids)
	if !ok || !best.Price.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("unexpected best bid %+v", best)
	}
	asks := books.AskEntries(testPair)
	if len(asks) != 1 {
		t.Fatalf("expected 1 ask level, got %d", len(asks))
	}
	if len(books.BidEntries(market.Pair{Market: "beta", Base: "ETH", Quote: "USDT"})) != 0 {
		t.Fatalf("unknown pairs must have no entries")
	}
}

func TestHandleMessageSkipsMalformedLevels(t *testing.T) {
	books := NewBooks(30*time.Second, nil)
	books.HandleMessage(bookJSON(t,
		[][2]string{{"not-a-number", "2"}, {"99.5", "4"}},
		nil,
	))
	bids := books.BidEntries(testPair)
	if len(bids) != 1 {
		t.Fatalf("malformed levels must be dropped, got %d entries", len(bids))
	}
}

func TestHandleMessageIgnoresOtherChannels(t *testing.T) {
	books := NewBooks(30*time.Second, nil)
	books.HandleMessage(json.RawMessage(`{"channel":"trades","market":"beta"}`))
	if books.Ready("beta") {
		t.Fatalf("non-orderbook messages must not mark the venue ready")
	}
	books.HandleMessage(json.RawMessage(`not json`))
	if books.Ready("beta") {
		t.Fatalf("garbage must not mark the venue ready")
	}
}

func TestReadinessAndStaleness(t *testing.T) {
	books := NewBooks(30*time.Second, nil)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	books.SetClock(func() time.Time { return now })

	if books.Ready("beta") || books.Connected("beta") {
		t.Fatalf("venue must start unready and disconnected")
	}
	books.HandleMessage(bookJSON(t, [][2]string{{"100", "2"}}, [][2]string{{"102", "3"}}))
	if !books.Ready("beta") || !books.Connected("beta") {
		t.Fatalf("a snapshot must make the venue ready and connected")
	}

	now = now.Add(31 * time.Second)
	if books.Connected("beta") {
		t.Fatalf("a stale snapshot must count as disconnected")
	}
	if !books.Ready("beta") {
		t.Fatalf("staleness must not revoke readiness")
	}

	books.HandleMessage(bookJSON(t, [][2]string{{"100", "2"}}, [][2]string{{"102", "3"}}))
	if !books.Connected("beta") {
		t.Fatalf("fresh data must restore the connection status")
	}
}
