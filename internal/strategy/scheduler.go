package strategy

import (
	"time"

	"go.uber.org/zap"
)

// Tick runs one scheduling pass. In NOT_READY it waits for every venue
// to become ready, warning at most once per status report interval. Once
// TRADING, a disconnected venue turns the tick into a no-op without a
// state transition. The tick timestamp is recorded on every exit path.
func (m *Mirror) Tick(now time.Time) {
	defer func() {
		m.lastTick = now
	}()
	switch m.state {
	case StateStopped:
		return
	case StateNotReady:
		if !m.marketsReady() {
			if m.notReadyWarnedAt.IsZero() || now.Sub(m.notReadyWarnedAt) >= m.params.StatusReportInterval {
				m.notReadyWarnedAt = now
				m.log.Warn("markets are not ready, no trading is permitted")
			}
			return
		}
		m.state = StateTrading
		m.log.Info("markets are ready, trading started")
	case StateTrading:
		if !m.marketsConnected() {
			m.metrics.TicksSkipped.Inc()
			m.log.Warn("market connection lost, skipping tick")
			return
		}
	}
	for _, mirrored := range m.pairs.Mirrored() {
		if err := m.ProcessMarketPair(mirrored); err != nil {
			m.log.Error("market pair processing failed",
				zap.String("pair", mirrored.String()),
				zap.Error(err),
			)
		}
	}
}

func (m *Mirror) marketsReady() bool {
	for _, venue := range m.pairs.Markets() {
		if !m.status.Ready(venue) {
			return false
		}
	}
	return true
}

func (m *Mirror) marketsConnected() bool {
	for _, venue := range m.pairs.Markets() {
		if !m.status.Connected(venue) {
			return false
		}
	}
	return true
}
