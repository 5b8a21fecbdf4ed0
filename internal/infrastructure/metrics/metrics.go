package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adminhub"

// Bus holds the dispatcher collectors.
type Bus struct {
	EventsEmitted    *prometheus.CounterVec
	HandlerFailures  *prometheus.CounterVec
	HandlersInflight prometheus.Gauge
	HandlerDuration  prometheus.Histogram
	EventsDropped    prometheus.Counter
}

// NewBus registers the dispatcher collectors on reg.
func NewBus(reg prometheus.Registerer) *Bus {
	f := promauto.With(reg)
	return &Bus{
		EventsEmitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_emitted_total",
				Help:      "Total number of events emitted on the bus",
			},
			[]string{"type"},
		),
		HandlerFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_handler_failures_total",
				Help:      "Total number of event handler invocations that returned an error or panicked",
			},
			[]string{"type", "reason"},
		),
		HandlersInflight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "event_handlers_inflight",
				Help:      "Handler invocations currently running",
			},
		),
		HandlerDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_handler_duration_seconds",
				Help:      "Time spent in a single handler invocation",
				Buckets:   []float64{.005, .01, .05, .1, .5, 1, 2, 5, 10},
			},
		),
		EventsDropped: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_dropped_total",
				Help:      "Events emitted after the bus was closed",
			},
		),
	}
}

// Webhooks holds the outbound delivery collectors.
type Webhooks struct {
	Deliveries       *prometheus.CounterVec
	DeliveryDuration prometheus.Histogram
	Retries          prometheus.Counter
}

func NewWebhooks(reg prometheus.Registerer) *Webhooks {
	f := promauto.With(reg)
	return &Webhooks{
		Deliveries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_deliveries_total",
				Help:      "Total number of webhook deliveries by outcome",
			},
			[]string{"status"},
		),
		DeliveryDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "webhook_delivery_duration_seconds",
				Help:      "Time to deliver a webhook including retries",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10},
			},
		),
		Retries: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_retries_total",
				Help:      "Total number of webhook retry attempts",
			},
		),
	}
}
