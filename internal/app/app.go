package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"lm-mirror-bot/internal/alerts"
	"lm-mirror-bot/internal/config"
	"lm-mirror-bot/internal/feed"
	"lm-mirror-bot/internal/history"
	"lm-mirror-bot/internal/journal"
	"lm-mirror-bot/internal/market"
	"lm-mirror-bot/internal/metrics"
	"lm-mirror-bot/internal/orders"
	"lm-mirror-bot/internal/strategy"

	"github.com/shopspring/decimal"
)

const eventQueueSize = 256

type App struct {
	cfg     *config.Config
	log     *zap.Logger
	pairs   *market.PairIndex
	journal *journal.Store
	history *history.Writer
	prom    *metrics.Prometheus
	feed    *feed.Client
	books   *feed.Books
	tracker *orders.PaperTracker
	mirror  *strategy.Mirror
	alerts  *alerts.Slack
	events  chan orders.Event

	stopNotified  bool
	lastStatusLog time.Time
}

// BuildPairs expands the mirroring config into primary and mirrored pair
// lists. Every configured (base, quote) exists on both venues.
func BuildPairs(cfg config.MirroringConfig) ([]market.Pair, []market.Pair) {
	primary := make([]market.Pair, 0, len(cfg.Pairs))
	mirrored := make([]market.Pair, 0, len(cfg.Pairs))
	for _, p := range cfg.Pairs {
		primary = append(primary, market.Pair{Market: cfg.PrimaryMarket, Base: p.Base, Quote: p.Quote})
		mirrored = append(mirrored, market.Pair{Market: cfg.MirroredMarket, Base: p.Base, Quote: p.Quote})
	}
	return primary, mirrored
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	primary, mirrored := BuildPairs(cfg.Mirroring)
	index, err := market.NewPairIndex(primary, mirrored)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.State.SQLitePath), 0o755); err != nil {
		return nil, err
	}
	journalStore, err := journal.New(cfg.State.SQLitePath, log)
	if err != nil {
		return nil, err
	}
	historyWriter, err := history.New(cfg.History, log)
	if err != nil {
		_ = journalStore.Close()
		return nil, err
	}
	var prom *metrics.Prometheus
	m := metrics.NewNoop()
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheus()
		m = prom.Metrics
	}
	books := feed.NewBooks(cfg.Feed.StaleAfter, log)
	feedClient := feed.NewClient(cfg.Feed.URL, cfg.Feed.ReconnectDelay, cfg.Feed.PingInterval, log)
	events := make(chan orders.Event, eventQueueSize)
	tracker := orders.NewPaperTracker(events, log)
	params := strategy.Params{
		SpreadPercent:        decimal.NewFromFloat(cfg.Strategy.SpreadPercent),
		HedgingEnabled:       cfg.Strategy.HedgingEnabled,
		MinHedgeAmount:       decimal.NewFromFloat(cfg.Strategy.MinHedgeAmount),
		StatusReportInterval: cfg.Strategy.StatusReportInterval,
		NextTradeDelay:       cfg.Strategy.NextTradeDelayInterval,
		FailedOrderTolerance: cfg.Strategy.FailedOrderTolerance,
		LadderDepth:          cfg.Strategy.LadderDepth,
		LadderStep:           decimal.NewFromFloat(cfg.Strategy.LadderStepPercent),
		LogOrderFills:        cfg.Strategy.LogOrderFills,
	}
	mirror, err := strategy.New(index, books, books, tracker, params, journalStore, m, log)
	if err != nil {
		_ = journalStore.Close()
		_ = historyWriter.Close()
		return nil, err
	}
	return &App{
		cfg:     cfg,
		log:     log,
		pairs:   index,
		journal: journalStore,
		history: historyWriter,
		prom:    prom,
		feed:    feedClient,
		books:   books,
		tracker: tracker,
		mirror:  mirror,
		alerts:  alerts.NewSlack(cfg.Slack, log),
		events:  events,
	}, nil
}

// Run drives the strategy until the context ends. Ticks and order
// lifecycle events are handled on this one goroutine, so the strategy
// core never sees concurrent access.
func (a *App) Run(ctx context.Context) error {
	defer a.journal.Close()
	a.history.Start(ctx)
	defer a.history.Close()
	a.serveMetrics(ctx)

	for _, pair := range a.pairs.Pairs() {
		if err := a.feed.SubscribeOrderBook(ctx, pair); err != nil {
			return fmt.Errorf("subscribe %s: %w", pair, err)
		}
	}
	go func() {
		if err := a.feed.Run(ctx, a.books.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error("feed terminated", zap.Error(err))
		}
	}()

	ticker := time.NewTicker(a.cfg.Strategy.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-a.events:
			orders.Dispatch(a.mirror, ev)
			a.notifyIfStopped(ctx)
		case t := <-ticker.C:
			now := t.UTC()
			a.mirror.Tick(now)
			a.recordHistory(now)
			a.logStatus(now)
		}
	}
}

func (a *App) serveMetrics(ctx context.Context) {
	if a.prom == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.prom.Handler())
	server := &http.Server{Addr: a.cfg.Metrics.ListenAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Warn("metrics server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}

func (a *App) notifyIfStopped(ctx context.Context) {
	if a.stopNotified || a.mirror.State() != strategy.StateStopped {
		return
	}
	a.stopNotified = true
	status := a.mirror.Status()
	msg := fmt.Sprintf("liquidity mirroring stopped: %d failed market orders exceeded tolerance", status.FailedOrders)
	if err := a.alerts.Send(ctx, msg); err != nil {
		a.log.Warn("alert send failed", zap.Error(err))
	}
}

func (a *App) recordHistory(now time.Time) {
	if a.history == nil {
		return
	}
	status := a.mirror.Status()
	for _, pair := range a.pairs.Mirrored() {
		quotes, ok := a.mirror.Quotes(pair)
		if !ok {
			continue
		}
		a.history.Enqueue(history.QuoteSnapshot{
			Time:         now,
			Pair:         pair.String(),
			State:        string(status.State),
			PrimaryBid:   quotes.PrimaryBid.String(),
			PrimaryAsk:   quotes.PrimaryAsk.String(),
			MirroredBid:  quotes.MirroredBid.String(),
			MirroredAsk:  quotes.MirroredAsk.String(),
			BidVolume:    quotes.BidVolume.String(),
			AskVolume:    quotes.AskVolume.String(),
			FailedOrders: status.FailedOrders,
		})
	}
}

func (a *App) logStatus(now time.Time) {
	if !a.lastStatusLog.IsZero() && now.Sub(a.lastStatusLog) < a.cfg.Strategy.StatusReportInterval {
		return
	}
	a.lastStatusLog = now
	status := a.mirror.Status()
	a.log.Info("strategy status",
		zap.String("state", string(status.State)),
		zap.Int("pairs", status.Pairs),
		zap.Int("failed_orders", status.FailedOrders),
		zap.Time("last_tick", status.LastTick),
	)
}
