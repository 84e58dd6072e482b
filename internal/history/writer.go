package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"lm-mirror-bot/internal/config"
)

const writeTimeout = 3 * time.Second

// QuoteSnapshot is one per-tick record of the quoting state for a
// mirrored pair.
type QuoteSnapshot struct {
	Time         time.Time
	Pair         string
	State        string
	PrimaryBid   string
	PrimaryAsk   string
	MirroredBid  string
	MirroredAsk  string
	BidVolume    string
	AskVolume    string
	FailedOrders int
}

// Writer persists quote snapshots to Postgres/TimescaleDB off the tick
// path. Snapshots are queued and dropped with a warning when the queue
// is full; history is best effort.
type Writer struct {
	db      *sql.DB
	log     *zap.Logger
	schema  string
	quotes  chan QuoteSnapshot
	started atomic.Bool
	dropped atomic.Uint64
}

func New(cfg config.HistoryConfig, log *zap.Logger) (*Writer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("history dsn is required")
	}
	schema := strings.TrimSpace(cfg.Schema)
	if schema == "" {
		schema = "public"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	w := &Writer{
		db:     db,
		log:    log,
		schema: schema,
		quotes: make(chan QuoteSnapshot, queueSize),
	}
	if err := w.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) Start(ctx context.Context) {
	if w == nil {
		return
	}
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run(ctx)
}

func (w *Writer) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

func (w *Writer) Enqueue(snapshot QuoteSnapshot) {
	if w == nil {
		return
	}
	select {
	case w.quotes <- snapshot:
	default:
		if w.dropped.Add(1) == 1 && w.log != nil {
			w.log.Warn("history queue full, dropping snapshots")
		}
	}
}

func (w *Writer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-w.quotes:
			w.write(ctx, snap)
		}
	}
}

func (w *Writer) ensureSchema(ctx context.Context) error {
	if w.db == nil {
		return errors.New("history db not initialized")
	}
	if w.schema != "public" {
		if err := w.exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", w.schema)); err != nil {
			return err
		}
	}
	if err := w.exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts TIMESTAMPTZ NOT NULL,
		pair TEXT NOT NULL,
		state TEXT NOT NULL,
		primary_bid NUMERIC NOT NULL,
		primary_ask NUMERIC NOT NULL,
		mirrored_bid NUMERIC NOT NULL,
		mirrored_ask NUMERIC NOT NULL,
		bid_volume NUMERIC NOT NULL,
		ask_volume NUMERIC NOT NULL,
		failed_orders INTEGER NOT NULL
	)`, w.table("quote_snapshots"))); err != nil {
		return err
	}
	if err := w.exec(ctx, "CREATE EXTENSION IF NOT EXISTS timescaledb"); err != nil {
		if w.log != nil {
			w.log.Warn("timescale extension ensure failed", zap.Error(err))
		}
		return nil
	}
	if err := w.exec(ctx, fmt.Sprintf("SELECT create_hypertable('%s', 'ts', if_not_exists => TRUE)", w.table("quote_snapshots"))); err != nil && w.log != nil {
		w.log.Warn("quote_snapshots hypertable create failed", zap.Error(err))
	}
	return nil
}

func (w *Writer) write(ctx context.Context, snap QuoteSnapshot) {
	if w.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (
		ts, pair, state, primary_bid, primary_ask, mirrored_bid, mirrored_ask, bid_volume, ask_volume, failed_orders
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`, w.table("quote_snapshots"))
	if _, err := w.db.ExecContext(ctx, query,
		snap.Time,
		snap.Pair,
		snap.State,
		snap.PrimaryBid,
		snap.PrimaryAsk,
		snap.MirroredBid,
		snap.MirroredAsk,
		snap.BidVolume,
		snap.AskVolume,
		snap.FailedOrders,
	); err != nil && w.log != nil {
		w.log.Warn("quote snapshot insert failed", zap.Error(err))
	}
}

func (w *Writer) exec(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *Writer) table(name string) string {
	return w.schema + "." + name
}
