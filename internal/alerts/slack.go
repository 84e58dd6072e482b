package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"lm-mirror-bot/internal/config"
)

// Slack posts operational alerts to an incoming webhook. Disabled
// clients accept messages and do nothing.
type Slack struct {
	enabled    bool
	webhookURL string
	client     *http.Client
	log        *zap.Logger
}

func NewSlack(cfg config.SlackConfig, log *zap.Logger) *Slack {
	return newSlack(cfg, log, &http.Client{Timeout: 10 * time.Second})
}

func newSlack(cfg config.SlackConfig, log *zap.Logger, client *http.Client) *Slack {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Slack{
		enabled:    cfg.Enabled,
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
		client:     client,
		log:        log,
	}
}

func (s *Slack) Send(ctx context.Context, message string) error {
	if !s.enabled {
		return nil
	}
	if s.webhookURL == "" {
		return errors.New("slack webhook url is required")
	}
	if strings.TrimSpace(message) == "" {
		return errors.New("slack message is empty")
	}
	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("slack send failed: http %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	return nil
}
