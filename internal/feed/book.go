package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lm-mirror-bot/internal/market"
)

// Books holds the latest order book snapshot per pair, fed by the
// websocket client. It serves read-only snapshots to the strategy and
// answers venue readiness from snapshot freshness.
type Books struct {
	log        *zap.Logger
	staleAfter time.Duration
	now        func() time.Time

	mu       sync.RWMutex
	books    map[string]*bookState
	byMarket map[string]time.Time
}

type bookState struct {
	bids      []market.BookEntry
	asks      []market.BookEntry
	updatedAt time.Time
}

type bookMessage struct {
	Channel string      `json:"channel"`
	Market  string      `json:"market"`
	Base    string      `json:"base"`
	Quote   string      `json:"quote"`
	Bids    [][2]string `json:"bids"`
	Asks    [][2]string `json:"asks"`
}

func NewBooks(staleAfter time.Duration, log *zap.Logger) *Books {
	if log == nil {
		log = zap.NewNop()
	}
	return &Books{
		log:        log,
		staleAfter: staleAfter,
		now:        time.Now,
		books:      make(map[string]*bookState),
		byMarket:   make(map[string]time.Time),
	}
}

// SetClock overrides the freshness time source.
func (b *Books) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// HandleMessage ingests one raw feed message. Non-orderbook messages and
// malformed levels are ignored.
func (b *Books) HandleMessage(raw json.RawMessage) {
	var msg bookMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		b.log.Debug("unparseable feed message", zap.Error(err))
		return
	}
	if msg.Channel != "orderbook" || msg.Market == "" {
		return
	}
	pair := market.Pair{Market: msg.Market, Base: msg.Base, Quote: msg.Quote}
	bids := parseEntries(msg.Bids)
	asks := parseEntries(msg.Asks)
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	b.books[pair.String()] = &bookState{bids: bids, asks: asks, updatedAt: now}
	b.byMarket[msg.Market] = now
}

func parseEntries(levels [][2]string) []market.BookEntry {
	out := make([]market.BookEntry, 0, len(levels))
	for _, level := range levels {
		price, err := decimal.NewFromString(level[0])
		if err != nil {
			continue
		}
		amount, err := decimal.NewFromString(level[1])
		if err != nil {
			continue
		}
		out = append(out, market.BookEntry{Price: price, Amount: amount})
	}
	return out
}

func (b *Books) BidEntries(pair market.Pair) []market.BookEntry {
	return b.side(pair, true)
}

func (b *Books) AskEntries(pair market.Pair) []market.BookEntry {
	return b.side(pair, false)
}

func (b *Books) side(pair market.Pair, bids bool) []market.BookEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	state, ok := b.books[pair.String()]
	if !ok {
		return nil
	}
	src := state.asks
	if bids {
		src = state.bids
	}
	return append([]market.BookEntry(nil), src...)
}

// Ready reports whether the venue has delivered an initial snapshot.
func (b *Books) Ready(venue string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.byMarket[venue]
	return ok
}

// Connected reports whether the venue delivered data recently.
func (b *Books) Connected(venue string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	last, ok := b.byMarket[venue]
	if !ok {
		return false
	}
	if b.staleAfter <= 0 {
		return true
	}
	return b.now().Sub(last) <= b.staleAfter
}
