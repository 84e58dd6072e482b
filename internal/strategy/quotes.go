package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lm-mirror-bot/internal/market"
	"lm-mirror-bot/internal/orders"
)

// ProcessMarketPair reprices the primary quote ladder for one mirrored
// pair and refreshes the mirrored reference prices. A mirrored book with
// an empty side skips the pair for this tick without error.
func (m *Mirror) ProcessMarketPair(mirrored market.Pair) error {
	primary, ok := m.pairs.PrimaryFor(mirrored)
	if !ok {
		return fmt.Errorf("no primary pair configured for %s", mirrored)
	}
	bids := m.books.BidEntries(mirrored)
	asks := m.books.AskEntries(mirrored)
	bestBid, okBid := market.BestBid(bids)
	bestAsk, okAsk := market.BestAsk(asks)
	if !okBid || !okAsk {
		return nil
	}
	m.adjustPrimaryOrderBook(primary, bestBid, bestAsk)
	m.adjustMirroredOrderBook(mirrored, bestBid, bestAsk, bids, asks)
	return nil
}

// WidenSpread returns the bid and ask to quote on the primary market. If
// the observed spread relative to the ask is below spreadPercent, both
// sides are pushed out symmetrically so the quoted spread meets the
// minimum; otherwise the raw prices pass through unchanged.
func WidenSpread(bestBid, bestAsk, spreadPercent decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if bestAsk.IsZero() {
		return bestBid, bestAsk
	}
	spread := bestAsk.Sub(bestBid)
	factor := spread.Div(bestAsk)
	if factor.GreaterThanOrEqual(spreadPercent) {
		return bestBid, bestAsk
	}
	adjustment := spreadPercent.Mul(bestAsk).Sub(spread).Div(two.Sub(spreadPercent))
	return bestBid.Sub(adjustment), bestAsk.Add(adjustment)
}

func (m *Mirror) adjustPrimaryOrderBook(primary market.Pair, bestBid, bestAsk market.BookEntry) {
	adjustedBid, adjustedAsk := WidenSpread(bestBid.Price, bestAsk.Price, m.params.SpreadPercent)
	anchor := m.anchorFor(primary)
	if priceMoved(anchor.bestBid, adjustedBid, requoteThreshold) {
		anchor.bestBid = adjustedBid
		m.replaceLadder(primary, orders.SideBuy, adjustedBid, bestBid.Amount)
	}
	if priceMoved(anchor.bestAsk, adjustedAsk, requoteThreshold) {
		anchor.bestAsk = adjustedAsk
		m.replaceLadder(primary, orders.SideSell, adjustedAsk, bestAsk.Amount)
	}
}

// replaceLadder cancels every active order of the given side on the
// primary pair and lays a fresh ladder: one order at the top price plus
// LadderDepth orders stepped away from it. Placements are fire and
// forget; individual failures surface later on the event stream.
func (m *Mirror) replaceLadder(primary market.Pair, side orders.Side, top, amount decimal.Decimal) {
	now := m.now()
	for _, ord := range m.tracker.ActiveOrders(primary) {
		if ord.Side != side {
			continue
		}
		m.tracker.CancelOrder(primary, ord.ID)
		m.record(Command{Time: now, Action: CommandCancel, Pair: primary.String(), Side: string(side), OrderID: ord.ID})
	}
	step := top.Mul(m.params.LadderStep)
	price := top
	for level := 0; level <= m.params.LadderDepth; level++ {
		id := m.tracker.PlaceLimitOrder(primary, side, price, amount)
		m.metrics.OrdersPlaced.Inc()
		m.record(Command{Time: now, Action: CommandPlace, Pair: primary.String(), Side: string(side), OrderID: id, Price: price, Amount: amount})
		if side == orders.SideBuy {
			price = price.Sub(step)
		} else {
			price = price.Add(step)
		}
	}
	m.metrics.QuotesReplaced.Inc()
	m.log.Debug("replaced quote ladder",
		zap.String("pair", primary.String()),
		zap.String("side", string(side)),
		zap.String("top_price", top.String()),
		zap.String("amount", amount.String()),
	)
}

// adjustMirroredOrderBook refreshes the stored mirrored reference prices
// under a 1% hysteresis and tallies resting volume on both sides. The
// volume is exported but not acted on yet; it is an extension point for
// inventory-aware sizing.
func (m *Mirror) adjustMirroredOrderBook(mirrored market.Pair, bestBid, bestAsk market.BookEntry, bids, asks []market.BookEntry) {
	ref := m.referenceFor(mirrored)
	if priceMoved(ref.bestBid, bestBid.Price, referenceThreshold) {
		ref.bestBid = bestBid.Price
	}
	if priceMoved(ref.bestAsk, bestAsk.Price, referenceThreshold) {
		ref.bestAsk = bestAsk.Price
	}
	ref.bidVolume = market.RestingVolume(bids)
	ref.askVolume = market.RestingVolume(asks)
}
