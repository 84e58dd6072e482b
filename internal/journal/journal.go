package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"lm-mirror-bot/internal/strategy"
)

const recordTimeout = 2 * time.Second

// Store is an append-only journal of the commands the strategy emits.
// The strategy writes through the Recorder interface and never reads the
// journal back; it exists for auditing and post-mortems only.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func New(path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS commands (
		ts INTEGER NOT NULL,
		action TEXT NOT NULL,
		pair TEXT NOT NULL,
		side TEXT NOT NULL,
		order_id TEXT NOT NULL,
		price TEXT NOT NULL,
		amount TEXT NOT NULL
	)`)
	return err
}

// RecordCommand appends one command. Failures are logged and swallowed:
// journaling must never interfere with trading.
func (s *Store) RecordCommand(cmd strategy.Command) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO commands (ts, action, pair, side, order_id, price, amount) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cmd.Time.UnixMilli(), cmd.Action, cmd.Pair, cmd.Side, cmd.OrderID, cmd.Price.String(), cmd.Amount.String(),
	)
	if err != nil {
		s.log.Warn("journal insert failed", zap.Error(err))
	}
}

// Tail returns the most recent commands, newest first.
func (s *Store) Tail(ctx context.Context, limit int) ([]strategy.Command, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, action, pair, side, order_id, price, amount FROM commands ORDER BY ts DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []strategy.Command
	for rows.Next() {
		var (
			ts            int64
			cmd           strategy.Command
			price, amount string
		)
		if err := rows.Scan(&ts, &cmd.Action, &cmd.Pair, &cmd.Side, &cmd.OrderID, &price, &amount); err != nil {
			return nil, err
		}
		cmd.Time = time.UnixMilli(ts).UTC()
		if cmd.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if cmd.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
