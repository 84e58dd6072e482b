package strategy

import (
	"go.uber.org/zap"

	"lm-mirror-bot/internal/orders"
)

// OnOrderFailed counts failed market orders toward the kill switch.
// Exceeding the configured tolerance stops the strategy for good; only
// an external restart resumes trading. Failures of other order types are
// logged and ignored.
func (m *Mirror) OnOrderFailed(ev orders.Failed) {
	if ev.OrderType != orders.TypeMarket {
		m.log.Info("order failed", zap.String("order_id", ev.ID), zap.String("order_type", string(ev.OrderType)))
		return
	}
	m.failedOrders++
	m.lastFailedAt = ev.At
	m.coolOffLogged = false
	m.metrics.OrdersFailed.Inc()
	m.log.Warn("market order failed",
		zap.String("order_id", ev.ID),
		zap.Int("failed_orders", m.failedOrders),
		zap.Int("tolerance", m.params.FailedOrderTolerance),
	)
	if m.failedOrders > m.params.FailedOrderTolerance && m.state != StateStopped {
		m.state = StateStopped
		m.metrics.KillSwitchEngaged.Inc()
		m.record(Command{Time: m.now(), Action: CommandKillSwitch})
		m.log.Warn("failed order tolerance exceeded, stopping strategy",
			zap.Int("failed_orders", m.failedOrders),
		)
	}
}

// OnOrderCancelled logs cancellations; they never count toward the kill
// switch.
func (m *Mirror) OnOrderCancelled(ev orders.Cancelled) {
	m.log.Debug("order cancelled", zap.String("order_id", ev.ID))
}
