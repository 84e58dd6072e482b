package orders

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lm-mirror-bot/internal/market"
)

// PaperTracker is an in-memory Tracker. Placements register immediately
// and lifecycle outcomes are driven through Fill, Fail and CancelOrder,
// which emit events into the sink channel. Used for paper trading and as
// the test double for the strategy core.
type PaperTracker struct {
	sink chan<- Event
	log  *zap.Logger
	now  func() time.Time

	mu     sync.Mutex
	seq    uint64
	open   map[string]TrackedOrder
	closed map[string]TrackedOrder

	dropped atomic.Uint64
}

func NewPaperTracker(sink chan<- Event, log *zap.Logger) *PaperTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaperTracker{
		sink:   sink,
		log:    log,
		now:    time.Now,
		open:   make(map[string]TrackedOrder),
		closed: make(map[string]TrackedOrder),
	}
}

// SetClock overrides the submission timestamp source.
func (t *PaperTracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

func (t *PaperTracker) ActiveOrders(pair market.Pair) []TrackedOrder {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []TrackedOrder
	for _, ord := range t.open {
		if ord.Pair == pair {
			out = append(out, ord)
		}
	}
	return out
}

func (t *PaperTracker) InFlightOrders(pair market.Pair) map[string]TrackedOrder {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]TrackedOrder)
	for id, ord := range t.open {
		if ord.Pair == pair {
			out[id] = ord
		}
	}
	return out
}

func (t *PaperTracker) Lookup(orderID string) (TrackedOrder, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ord, ok := t.open[orderID]; ok {
		return ord, true
	}
	ord, ok := t.closed[orderID]
	return ord, ok
}

func (t *PaperTracker) PlaceLimitOrder(pair market.Pair, side Side, price, amount decimal.Decimal) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	id := fmt.Sprintf("ord-%d", t.seq)
	t.open[id] = TrackedOrder{
		ID:          id,
		Pair:        pair,
		Side:        side,
		Type:        TypeLimit,
		Price:       price,
		Quantity:    amount,
		SubmittedAt: t.now(),
	}
	return id
}

func (t *PaperTracker) CancelOrder(pair market.Pair, orderID string) {
	t.mu.Lock()
	ord, ok := t.open[orderID]
	if !ok || ord.Pair != pair {
		t.mu.Unlock()
		return
	}
	delete(t.open, orderID)
	t.closed[orderID] = ord
	t.mu.Unlock()
	t.emit(Cancelled{ID: orderID})
}

// Fill marks an open order as fully completed and emits the event.
func (t *PaperTracker) Fill(orderID string) {
	t.mu.Lock()
	ord, ok := t.open[orderID]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.open, orderID)
	t.closed[orderID] = ord
	t.mu.Unlock()
	t.emit(Completed{
		ID:          orderID,
		Side:        ord.Side,
		BaseAmount:  ord.Quantity,
		QuoteAmount: ord.Price.Mul(ord.Quantity),
	})
}

// Fail rejects an open order and emits the failure event.
func (t *PaperTracker) Fail(orderID string) {
	t.mu.Lock()
	ord, ok := t.open[orderID]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.open, orderID)
	t.closed[orderID] = ord
	t.mu.Unlock()
	t.emit(Failed{ID: orderID, OrderType: ord.Type, At: t.now()})
}

func (t *PaperTracker) emit(ev Event) {
	if t.sink == nil {
		return
	}
	select {
	case t.sink <- ev:
	default:
		if t.dropped.Add(1) == 1 {
			t.log.Warn("order event sink full, dropping events")
		}
	}
}
