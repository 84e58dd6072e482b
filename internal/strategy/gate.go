package strategy

import (
	"time"

	"go.uber.org/zap"

	"lm-mirror-bot/internal/market"
)

// ReadyForNewOrders reports whether new orders may be placed for the
// given pairs. It checks the kill-switch cool-off, unresolved in-flight
// orders and the per-pair trade delay, in that order. The only state it
// mutates is the cool-off log suppression flag.
func (m *Mirror) ReadyForNewOrders(pairs []market.Pair) bool {
	now := m.now()
	if m.failedOrders > 0 {
		readyAt := m.lastFailedAt.Add(time.Duration(m.failedOrders) * FailedOrderCoolOffTime)
		if now.Before(readyAt) {
			if !m.coolOffLogged {
				m.coolOffLogged = true
				m.log.Info("cooling off from failed order",
					zap.Duration("resume_in", readyAt.Sub(now)),
					zap.Int("failed_orders", m.failedOrders),
				)
			}
			return false
		}
	}
	for _, p := range pairs {
		for _, ord := range m.tracker.InFlightOrders(p) {
			if now.Sub(ord.SubmittedAt) < MarketOrderMaxTrackingTime {
				return false
			}
		}
	}
	for _, p := range pairs {
		last, ok := m.lastTrade[p.String()]
		if ok && now.Before(last.Add(m.params.NextTradeDelay)) {
			return false
		}
	}
	if m.coolOffLogged {
		m.coolOffLogged = false
		m.log.Info("ready to place orders again")
	}
	return true
}
