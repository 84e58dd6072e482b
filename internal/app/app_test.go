package app

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"lm-mirror-bot/internal/config"
	"lm-mirror-bot/internal/strategy"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Feed: config.FeedConfig{
			URL:            "wss://feed.example.com/ws",
			ReconnectDelay: time.Second,
			PingInterval:   30 * time.Second,
			StaleAfter:     10 * time.Second,
		},
		Mirroring: config.MirroringConfig{
			PrimaryMarket:  "alpha",
			MirroredMarket: "beta",
			Pairs: []config.PairConfig{
				{Base: "BTC", Quote: "USDT"},
				{Base: "ETH", Quote: "USDT"},
			},
		},
		Strategy: config.StrategyConfig{
			SpreadPercent:          0.01,
			TickInterval:           time.Second,
			StatusReportInterval:   15 * time.Minute,
			NextTradeDelayInterval: time.Minute,
			FailedOrderTolerance:   5,
		},
		State: config.StateConfig{
			SQLitePath: filepath.Join(t.TempDir(), "state.db"),
		},
	}
}

func TestBuildPairs(t *testing.T) {
	cfg := testConfig(t)
	primary, mirrored := BuildPairs(cfg.Mirroring)
	if len(primary) != 2 || len(mirrored) != 2 {
		t.Fatalf("expected 2 pairs per venue, got %d and %d", len(primary), len(mirrored))
	}
	if primary[0].Market != "alpha" || mirrored[0].Market != "beta" {
		t.Fatalf("unexpected venues %s and %s", primary[0].Market, mirrored[0].Market)
	}
	if primary[0].AssetKey() != mirrored[0].AssetKey() {
		t.Fatalf("pairs must share assets across venues")
	}
	if primary[1].Base != "ETH" {
		t.Fatalf("pair order must be preserved, got %s", primary[1].Base)
	}
}

func TestNewWiresStrategy(t *testing.T) {
	app, err := New(testConfig(t), zap.NewNop())
	if err != nil {
		t.Fatalf("building app: %v", err)
	}
	defer app.journal.Close()

	if app.mirror.State() != strategy.StateNotReady {
		t.Fatalf("expected initial state %s, got %s", strategy.StateNotReady, app.mirror.State())
	}
	if got := len(app.pairs.Pairs()); got != 4 {
		t.Fatalf("expected 4 configured pairs, got %d", got)
	}
	if app.prom != nil {
		t.Fatalf("metrics must stay disabled unless configured")
	}
}

func TestNewRejectsBrokenMirroring(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mirroring.Pairs = append(cfg.Mirroring.Pairs, config.PairConfig{Base: "BTC", Quote: "USDT"})
	if _, err := New(cfg, zap.NewNop()); err == nil {
		t.Fatalf("duplicate pairs must fail construction")
	}
}
