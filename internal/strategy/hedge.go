package strategy

import (
	"go.uber.org/zap"

	"lm-mirror-bot/internal/market"
	"lm-mirror-bot/internal/orders"
)

// OnOrderCompleted reacts to a fill. Fills on a primary pair above the
// minimum hedge amount place one opposing limit order on the mirrored
// counterpart, gated by ReadyForNewOrders. Fills on mirrored pairs never
// trigger further hedging.
func (m *Mirror) OnOrderCompleted(ev orders.Completed) {
	if m.state == StateStopped {
		return
	}
	ord, ok := m.tracker.Lookup(ev.ID)
	if !ok {
		m.log.Debug("completion event for unknown order", zap.String("order_id", ev.ID))
		return
	}
	m.lastTrade[ord.Pair.String()] = m.now()
	if m.params.LogOrderFills {
		m.log.Info("order completed",
			zap.String("order_id", ev.ID),
			zap.String("pair", ord.Pair.String()),
			zap.String("side", string(ev.Side)),
			zap.String("base_amount", ev.BaseAmount.String()),
			zap.String("quote_amount", ev.QuoteAmount.String()),
		)
	}
	if !m.params.HedgingEnabled {
		return
	}
	mirrored, ok := m.pairs.MirroredFor(ord.Pair)
	if !ok {
		return
	}
	if ev.BaseAmount.LessThanOrEqual(m.params.MinHedgeAmount) {
		return
	}
	if !m.ReadyForNewOrders([]market.Pair{mirrored}) {
		return
	}
	side := ev.Side.Opposite()
	id := m.tracker.PlaceLimitOrder(mirrored, side, ev.QuoteAmount, ev.BaseAmount)
	m.metrics.HedgesPlaced.Inc()
	m.record(Command{
		Time:    m.now(),
		Action:  CommandHedge,
		Pair:    mirrored.String(),
		Side:    string(side),
		OrderID: id,
		Price:   ev.QuoteAmount,
		Amount:  ev.BaseAmount,
	})
	m.log.Info("placed hedge order",
		zap.String("order_id", id),
		zap.String("pair", mirrored.String()),
		zap.String("side", string(side)),
		zap.String("amount", ev.BaseAmount.String()),
	)
}
