package strategy

import (
	"testing"

	"lm-mirror-bot/internal/orders"
)

func TestKillSwitchEngagesPastTolerance(t *testing.T) {
	params := defaultParams()
	params.FailedOrderTolerance = 2
	h := newHarness(t, params)
	h.mirror.state = StateTrading

	for i := 0; i < 2; i++ {
		h.mirror.OnOrderFailed(orders.Failed{ID: "f", OrderType: orders.TypeMarket, At: h.now})
	}
	if h.mirror.State() != StateTrading {
		t.Fatalf("failures within tolerance must not stop the strategy")
	}
	h.mirror.OnOrderFailed(orders.Failed{ID: "f", OrderType: orders.TypeMarket, At: h.now})
	if h.mirror.State() != StateStopped {
		t.Fatalf("exceeding the tolerance must stop the strategy, state is %s", h.mirror.State())
	}
	if h.rec.count(CommandKillSwitch) != 1 {
		t.Fatalf("expected one recorded kill switch command, got %d", h.rec.count(CommandKillSwitch))
	}
	if h.mirror.Status().FailedOrders != 3 {
		t.Fatalf("expected 3 counted failures, got %d", h.mirror.Status().FailedOrders)
	}
}

func TestStoppedStrategyStaysStopped(t *testing.T) {
	params := defaultParams()
	params.FailedOrderTolerance = 0
	h := newHarness(t, params)
	h.setDefaultBook()
	h.mirror.state = StateTrading

	h.mirror.OnOrderFailed(orders.Failed{ID: "f", OrderType: orders.TypeMarket, At: h.now})
	if h.mirror.State() != StateStopped {
		t.Fatalf("expected stopped state")
	}

	h.advance(defaultParams().StatusReportInterval)
	h.mirror.Tick(h.now)
	if h.mirror.State() != StateStopped {
		t.Fatalf("ticks must not revive a stopped strategy")
	}
	if len(h.tracker.ActiveOrders(primaryPair)) != 0 {
		t.Fatalf("stopped strategy must not place orders")
	}
	if !h.mirror.LastTick().Equal(h.now) {
		t.Fatalf("stopped ticks must still stamp the tick time")
	}
}

func TestNonMarketFailuresDoNotCount(t *testing.T) {
	params := defaultParams()
	params.FailedOrderTolerance = 0
	h := newHarness(t, params)
	h.mirror.state = StateTrading

	h.mirror.OnOrderFailed(orders.Failed{ID: "f", OrderType: orders.TypeLimit, At: h.now})
	if h.mirror.State() != StateTrading {
		t.Fatalf("limit order failures must not trip the kill switch")
	}
	if h.mirror.Status().FailedOrders != 0 {
		t.Fatalf("limit order failures must not count, got %d", h.mirror.Status().FailedOrders)
	}
}

func TestCancellationsDoNotCount(t *testing.T) {
	params := defaultParams()
	params.FailedOrderTolerance = 0
	h := newHarness(t, params)
	h.mirror.state = StateTrading

	h.mirror.OnOrderCancelled(orders.Cancelled{ID: "c"})
	if h.mirror.State() != StateTrading || h.mirror.Status().FailedOrders != 0 {
		t.Fatalf("cancellations must never count toward the kill switch")
	}
}
