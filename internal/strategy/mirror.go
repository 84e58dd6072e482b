package strategy

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lm-mirror-bot/internal/market"
	"lm-mirror-bot/internal/metrics"
	"lm-mirror-bot/internal/orders"
)

type State string

const (
	StateNotReady State = "NOT_READY"
	StateTrading  State = "TRADING"
	StateStopped  State = "STOPPED"
)

const (
	// FailedOrderCoolOffTime scales the kill-switch cool-off window: after
	// n failed market orders, quoting resumes n windows after the last
	// failure.
	FailedOrderCoolOffTime = 30 * time.Minute

	// MarketOrderMaxTrackingTime bounds how long an unresolved in-flight
	// order keeps the gate closed. Older orders are treated as resolved
	// even without a lifecycle event.
	MarketOrderMaxTrackingTime = 10 * time.Minute
)

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)

	// Relative price moves below these thresholds do not trigger requotes
	// (primary) or reference updates (mirrored).
	requoteThreshold   = decimal.RequireFromString("0.001")
	referenceThreshold = decimal.RequireFromString("0.01")

	defaultLadderStep = decimal.RequireFromString("0.001")
)

type Params struct {
	SpreadPercent        decimal.Decimal
	HedgingEnabled       bool
	MinHedgeAmount       decimal.Decimal
	StatusReportInterval time.Duration
	NextTradeDelay       time.Duration
	FailedOrderTolerance int
	LadderDepth          int
	LadderStep           decimal.Decimal
	LogOrderFills        bool
}

func (p *Params) normalize() error {
	if p.SpreadPercent.IsNegative() || p.SpreadPercent.GreaterThanOrEqual(one) {
		return errors.New("spread percent must be in [0, 1)")
	}
	if p.MinHedgeAmount.IsNegative() {
		return errors.New("min hedge amount must be >= 0")
	}
	if p.FailedOrderTolerance < 0 {
		return errors.New("failed order tolerance must be >= 0")
	}
	if p.StatusReportInterval <= 0 {
		p.StatusReportInterval = 15 * time.Minute
	}
	if p.NextTradeDelay <= 0 {
		p.NextTradeDelay = time.Minute
	}
	if p.LadderDepth <= 0 {
		p.LadderDepth = 8
	}
	if p.LadderStep.IsZero() {
		p.LadderStep = defaultLadderStep
	}
	if p.LadderStep.IsNegative() {
		return errors.New("ladder step must be > 0")
	}
	return nil
}

const (
	CommandPlace      = "place"
	CommandCancel     = "cancel"
	CommandHedge      = "hedge"
	CommandKillSwitch = "kill_switch"
)

// Command is an order instruction the strategy emitted, recorded for
// auditing. The strategy never reads commands back.
type Command struct {
	Time    time.Time
	Action  string
	Pair    string
	Side    string
	OrderID string
	Price   decimal.Decimal
	Amount  decimal.Decimal
}

type Recorder interface {
	RecordCommand(cmd Command)
}

type quoteAnchor struct {
	bestBid decimal.Decimal
	bestAsk decimal.Decimal
}

type mirrorReference struct {
	bestBid   decimal.Decimal
	bestAsk   decimal.Decimal
	bidVolume decimal.Decimal
	askVolume decimal.Decimal
}

// Mirror is the liquidity-mirroring decision core. All state is owned by
// a single logical execution context: ticks and lifecycle events must be
// delivered serially, so no locking is done here.
type Mirror struct {
	pairs    *market.PairIndex
	books    market.OrderBookView
	status   market.StatusSource
	tracker  orders.Tracker
	params   Params
	recorder Recorder
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time

	state            State
	anchors          map[string]*quoteAnchor
	references       map[string]*mirrorReference
	lastTrade        map[string]time.Time
	failedOrders     int
	lastFailedAt     time.Time
	coolOffLogged    bool
	lastTick         time.Time
	notReadyWarnedAt time.Time
}

func New(pairs *market.PairIndex, books market.OrderBookView, status market.StatusSource, tracker orders.Tracker, params Params, recorder Recorder, m *metrics.Metrics, log *zap.Logger) (*Mirror, error) {
	if pairs == nil {
		return nil, errors.New("pair index is required")
	}
	if books == nil || status == nil || tracker == nil {
		return nil, errors.New("order book view, status source and tracker are required")
	}
	if err := params.normalize(); err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Mirror{
		pairs:      pairs,
		books:      books,
		status:     status,
		tracker:    tracker,
		params:     params,
		recorder:   recorder,
		metrics:    m,
		log:        log,
		now:        time.Now,
		state:      StateNotReady,
		anchors:    make(map[string]*quoteAnchor),
		references: make(map[string]*mirrorReference),
		lastTrade:  make(map[string]time.Time),
	}, nil
}

// SetClock overrides the time source.
func (m *Mirror) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Mirror) State() State {
	return m.state
}

func (m *Mirror) LastTick() time.Time {
	return m.lastTick
}

type Status struct {
	State        State
	FailedOrders int
	LastTick     time.Time
	Pairs        int
}

func (m *Mirror) Status() Status {
	return Status{
		State:        m.state,
		FailedOrders: m.failedOrders,
		LastTick:     m.lastTick,
		Pairs:        len(m.pairs.Mirrored()),
	}
}

// PairQuotes is a read-only view of the quoting state for one mirrored
// pair, used for status reporting and history snapshots.
type PairQuotes struct {
	Pair        market.Pair
	PrimaryBid  decimal.Decimal
	PrimaryAsk  decimal.Decimal
	MirroredBid decimal.Decimal
	MirroredAsk decimal.Decimal
	BidVolume   decimal.Decimal
	AskVolume   decimal.Decimal
}

func (m *Mirror) Quotes(mirrored market.Pair) (PairQuotes, bool) {
	primary, ok := m.pairs.PrimaryFor(mirrored)
	if !ok {
		return PairQuotes{}, false
	}
	out := PairQuotes{Pair: mirrored}
	if a, ok := m.anchors[primary.String()]; ok {
		out.PrimaryBid = a.bestBid
		out.PrimaryAsk = a.bestAsk
	}
	if r, ok := m.references[mirrored.String()]; ok {
		out.MirroredBid = r.bestBid
		out.MirroredAsk = r.bestAsk
		out.BidVolume = r.bidVolume
		out.AskVolume = r.askVolume
	}
	return out, true
}

func (m *Mirror) record(cmd Command) {
	if m.recorder == nil {
		return
	}
	m.recorder.RecordCommand(cmd)
}

func (m *Mirror) anchorFor(primary market.Pair) *quoteAnchor {
	key := primary.String()
	a, ok := m.anchors[key]
	if !ok {
		a = &quoteAnchor{}
		m.anchors[key] = a
	}
	return a
}

func (m *Mirror) referenceFor(mirrored market.Pair) *mirrorReference {
	key := mirrored.String()
	r, ok := m.references[key]
	if !ok {
		r = &mirrorReference{}
		m.references[key] = r
	}
	return r
}

// priceMoved reports whether next differs from the stored anchor by more
// than the threshold, relatively. An unset anchor always counts as moved.
func priceMoved(stored, next, threshold decimal.Decimal) bool {
	if next.IsZero() {
		return false
	}
	if stored.IsZero() {
		return true
	}
	return one.Sub(stored.Div(next)).Abs().GreaterThan(threshold)
}
