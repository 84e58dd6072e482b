package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"lm-mirror-bot/internal/market"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

type Type string

const (
	TypeLimit  Type = "LIMIT"
	TypeMarket Type = "MARKET"
)

// TrackedOrder is an order known to the tracker. The strategy core only
// reads tracked orders; it never mutates them.
type TrackedOrder struct {
	ID          string
	Pair        market.Pair
	Side        Side
	Type        Type
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	SubmittedAt time.Time
}

// Tracker is the order-tracking collaborator. Placements and cancels are
// asynchronous: PlaceLimitOrder returns a client order id immediately and
// the outcome surfaces later on the lifecycle event stream.
type Tracker interface {
	ActiveOrders(pair market.Pair) []TrackedOrder
	InFlightOrders(pair market.Pair) map[string]TrackedOrder
	Lookup(orderID string) (TrackedOrder, bool)
	PlaceLimitOrder(pair market.Pair, side Side, price, amount decimal.Decimal) string
	CancelOrder(pair market.Pair, orderID string)
}
