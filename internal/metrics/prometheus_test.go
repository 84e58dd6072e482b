package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusCounters(t *testing.T) {
	prom := NewPrometheus()
	prom.Metrics.OrdersPlaced.Inc()
	prom.Metrics.OrdersFailed.Inc()
	prom.Metrics.QuotesReplaced.Inc()
	prom.Metrics.HedgesPlaced.Inc()
	prom.Metrics.KillSwitchEngaged.Inc()
	prom.Metrics.TicksSkipped.Inc()
	prom.Metrics.OrdersPlaced.Inc()

	assertCounter(t, prom.Metrics.OrdersPlaced, 2)
	assertCounter(t, prom.Metrics.OrdersFailed, 1)
	assertCounter(t, prom.Metrics.QuotesReplaced, 1)
	assertCounter(t, prom.Metrics.HedgesPlaced, 1)
	assertCounter(t, prom.Metrics.KillSwitchEngaged, 1)
	assertCounter(t, prom.Metrics.TicksSkipped, 1)
}

func assertCounter(t *testing.T, counter Counter, expected float64) {
	t.Helper()
	pc, ok := counter.(promCounter)
	if !ok {
		t.Fatalf("expected a prometheus-backed counter, got %T", counter)
	}
	if got := testutil.ToFloat64(pc.counter); got != expected {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

func TestPrometheusHandlerExposesMetrics(t *testing.T) {
	prom := NewPrometheus()
	prom.Metrics.HedgesPlaced.Inc()

	rec := httptest.NewRecorder()
	prom.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "lm_mirror_bot_hedges_placed_total 1") {
		t.Fatalf("exposition missing hedge counter:\n%s", body)
	}
}

func TestNoopMetricsAreSafe(t *testing.T) {
	m := NewNoop()
	m.OrdersPlaced.Inc()
	m.TicksSkipped.Inc()
}
