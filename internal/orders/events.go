package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the sealed set of order lifecycle events. Each event carries
// the id of the order it refers to; the strategy correlates it back to a
// TrackedOrder through the tracker.
type Event interface {
	OrderID() string
}

type Completed struct {
	ID          string
	Side        Side
	BaseAmount  decimal.Decimal
	QuoteAmount decimal.Decimal
}

func (e Completed) OrderID() string { return e.ID }

type Failed struct {
	ID        string
	OrderType Type
	At        time.Time
}

func (e Failed) OrderID() string { return e.ID }

type Cancelled struct {
	ID string
}

func (e Cancelled) OrderID() string { return e.ID }

// Handler receives lifecycle events, one method per variant.
type Handler interface {
	OnOrderCompleted(Completed)
	OnOrderFailed(Failed)
	OnOrderCancelled(Cancelled)
}

// Dispatch routes an event to the matching handler method. Unknown event
// types are ignored.
func Dispatch(h Handler, ev Event) {
	switch e := ev.(type) {
	case Completed:
		h.OnOrderCompleted(e)
	case Failed:
		h.OnOrderFailed(e)
	case Cancelled:
		h.OnOrderCancelled(e)
	}
}
