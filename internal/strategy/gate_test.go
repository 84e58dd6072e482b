package strategy

import (
	"testing"
	"time"

	"lm-mirror-bot/internal/market"
	"lm-mirror-bot/internal/orders"
)

func TestReadyForNewOrdersCoolOffScalesWithFailures(t *testing.T) {
	h := newHarness(t, defaultParams())
	pairs := []market.Pair{mirroredPair}

	h.mirror.OnOrderFailed(orders.Failed{ID: "x1", OrderType: orders.TypeMarket, At: h.now})
	h.mirror.OnOrderFailed(orders.Failed{ID: "x2", OrderType: orders.TypeMarket, At: h.now})

	if h.mirror.ReadyForNewOrders(pairs) {
		t.Fatalf("must not be ready right after failures")
	}
	h.advance(FailedOrderCoolOffTime)
	if h.mirror.ReadyForNewOrders(pairs) {
		t.Fatalf("two failures must cool off for two windows, one elapsed")
	}
	h.advance(FailedOrderCoolOffTime)
	if !h.mirror.ReadyForNewOrders(pairs) {
		t.Fatalf("must be ready once the scaled cool-off elapsed")
	}
}

func TestReadyForNewOrdersCoolOffLogFlag(t *testing.T) {
	h := newHarness(t, defaultParams())
	pairs := []market.Pair{mirroredPair}

	h.mirror.OnOrderFailed(orders.Failed{ID: "x1", OrderType: orders.TypeMarket, At: h.now})
	h.mirror.ReadyForNewOrders(pairs)
	if !h.mirror.coolOffLogged {
		t.Fatalf("first blocked check must mark the cool-off as logged")
	}
	h.advance(FailedOrderCoolOffTime)
	h.mirror.ReadyForNewOrders(pairs)
	if h.mirror.coolOffLogged {
		t.Fatalf("passing the gate must clear the cool-off log flag")
	}
}

func TestReadyForNewOrdersBlocksOnInFlightOrders(t *testing.T) {
	h := newHarness(t, defaultParams())
	pairs := []market.Pair{mirroredPair}

	h.tracker.PlaceLimitOrder(mirroredPair, orders.SideBuy, d("100"), d("1"))
	if h.mirror.ReadyForNewOrders(pairs) {
		t.Fatalf("unresolved in-flight order must block")
	}
	h.advance(MarketOrderMaxTrackingTime)
	if !h.mirror.ReadyForNewOrders(pairs) {
		t.Fatalf("stale in-flight order must stop blocking")
	}
}

func TestReadyForNewOrdersIgnoresOtherPairsInFlight(t *testing.T) {
	h := newHarness(t, defaultParams())

	h.tracker.PlaceLimitOrder(primaryPair, orders.SideBuy, d("100"), d("1"))
	if !h.mirror.ReadyForNewOrders([]market.Pair{mirroredPair}) {
		t.Fatalf("in-flight orders on unrelated pairs must not block")
	}
}

func TestReadyForNewOrdersHonoursTradeDelay(t *testing.T) {
	params := defaultParams()
	params.NextTradeDelay = 5 * time.Minute
	h := newHarness(t, params)
	pairs := []market.Pair{mirroredPair}

	h.mirror.lastTrade[mirroredPair.String()] = h.now
	if h.mirror.ReadyForNewOrders(pairs) {
		t.Fatalf("recent trade must block until the delay elapses")
	}
	h.advance(5 * time.Minute)
	if !h.mirror.ReadyForNewOrders(pairs) {
		t.Fatalf("must be ready after the trade delay")
	}
}
