package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log       LoggingConfig   `yaml:"log"`
	Feed      FeedConfig      `yaml:"feed"`
	Mirroring MirroringConfig `yaml:"mirroring"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	State     StateConfig     `yaml:"state"`
	History   HistoryConfig   `yaml:"history"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Slack     SlackConfig     `yaml:"slack"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type FeedConfig struct {
	URL            string        `yaml:"url"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	StaleAfter     time.Duration `yaml:"stale_after"`
}

type MirroringConfig struct {
	PrimaryMarket  string       `yaml:"primary_market"`
	MirroredMarket string       `yaml:"mirrored_market"`
	Pairs          []PairConfig `yaml:"pairs"`
}

type PairConfig struct {
	Base  string `yaml:"base"`
	Quote string `yaml:"quote"`
}

type StrategyConfig struct {
	SpreadPercent          float64       `yaml:"spread_percent"`
	TickInterval           time.Duration `yaml:"tick_interval"`
	StatusReportInterval   time.Duration `yaml:"status_report_interval"`
	NextTradeDelayInterval time.Duration `yaml:"next_trade_delay_interval"`
	FailedOrderTolerance   int           `yaml:"failed_order_tolerance"`
	HedgingEnabled         bool          `yaml:"hedging_enabled"`
	MinHedgeAmount         float64       `yaml:"min_hedge_amount"`
	LadderDepth            int           `yaml:"ladder_depth"`
	LadderStepPercent      float64       `yaml:"ladder_step_percent"`
	LogOrderFills          bool          `yaml:"log_order_fills"`
}

type StateConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type HistoryConfig struct {
	Enabled         bool          `yaml:"enabled"`
	DSN             string        `yaml:"dsn"`
	Schema          string        `yaml:"schema"`
	QueueSize       int           `yaml:"queue_size"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, validate(&cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Feed.ReconnectDelay == 0 {
		cfg.Feed.ReconnectDelay = 3 * time.Second
	}
	if cfg.Feed.PingInterval == 0 {
		cfg.Feed.PingInterval = 30 * time.Second
	}
	if cfg.Feed.StaleAfter == 0 {
		cfg.Feed.StaleAfter = 10 * time.Second
	}
	if cfg.Strategy.TickInterval == 0 {
		cfg.Strategy.TickInterval = time.Second
	}
	if cfg.Strategy.StatusReportInterval == 0 {
		cfg.Strategy.StatusReportInterval = 15 * time.Minute
	}
	if cfg.Strategy.NextTradeDelayInterval == 0 {
		cfg.Strategy.NextTradeDelayInterval = time.Minute
	}
	if cfg.Strategy.FailedOrderTolerance == 0 {
		cfg.Strategy.FailedOrderTolerance = 5
	}
	if cfg.Strategy.LadderDepth == 0 {
		cfg.Strategy.LadderDepth = 8
	}
	if cfg.Strategy.LadderStepPercent == 0 {
		cfg.Strategy.LadderStepPercent = 0.001
	}
	if cfg.State.SQLitePath == "" {
		cfg.State.SQLitePath = "data/lm-mirror-bot.db"
	}
	if cfg.History.Schema == "" {
		cfg.History.Schema = "public"
	}
	if cfg.History.QueueSize == 0 {
		cfg.History.QueueSize = 256
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9090"
	}
}

func validate(cfg *Config) error {
	if cfg.Mirroring.PrimaryMarket == "" {
		return errors.New("mirroring.primary_market is required")
	}
	if cfg.Mirroring.MirroredMarket == "" {
		return errors.New("mirroring.mirrored_market is required")
	}
	if strings.EqualFold(cfg.Mirroring.PrimaryMarket, cfg.Mirroring.MirroredMarket) {
		return errors.New("mirroring.primary_market and mirroring.mirrored_market must differ")
	}
	if len(cfg.Mirroring.Pairs) == 0 {
		return errors.New("mirroring.pairs must list at least one pair")
	}
	for i, pair := range cfg.Mirroring.Pairs {
		if pair.Base == "" || pair.Quote == "" {
			return fmt.Errorf("mirroring.pairs[%d]: base and quote are required", i)
		}
	}
	if cfg.Strategy.SpreadPercent < 0 || cfg.Strategy.SpreadPercent >= 1 {
		return errors.New("strategy.spread_percent must be in [0, 1)")
	}
	if cfg.Strategy.MinHedgeAmount < 0 {
		return errors.New("strategy.min_hedge_amount must be >= 0")
	}
	if cfg.Strategy.FailedOrderTolerance < 0 {
		return errors.New("strategy.failed_order_tolerance must be >= 0")
	}
	if cfg.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	if cfg.History.Enabled && cfg.History.DSN == "" {
		return errors.New("history.dsn is required when history is enabled")
	}
	if cfg.Slack.Enabled && cfg.Slack.WebhookURL == "" {
		return errors.New("slack.webhook_url is required when slack is enabled")
	}
	return nil
}
