package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "lm_mirror_bot"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

type Prometheus struct {
	Metrics *Metrics

	registry *prometheus.Registry
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_placed_total",
		Help:      "Total number of limit orders placed.",
	})
	ordersFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_failed_total",
		Help:      "Total number of failed market orders counted toward the kill switch.",
	})
	quotesReplaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "quotes_replaced_total",
		Help:      "Total number of quote ladder replacements on the primary market.",
	})
	hedgesPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "hedges_placed_total",
		Help:      "Total number of hedge orders placed on mirrored markets.",
	})
	killSwitchEngaged := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "kill_switch_engaged_total",
		Help:      "Total number of kill switch engagements.",
	})
	ticksSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "ticks_skipped_total",
		Help:      "Total number of ticks skipped due to disconnected markets.",
	})

	registry.MustRegister(ordersPlaced, ordersFailed, quotesReplaced, hedgesPlaced, killSwitchEngaged, ticksSkipped)

	return &Prometheus{
		Metrics: &Metrics{
			OrdersPlaced:      promCounter{ordersPlaced},
			OrdersFailed:      promCounter{ordersFailed},
			QuotesReplaced:    promCounter{quotesReplaced},
			HedgesPlaced:      promCounter{hedgesPlaced},
			KillSwitchEngaged: promCounter{killSwitchEngaged},
			TicksSkipped:      promCounter{ticksSkipped},
		},
		registry: registry,
	}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
