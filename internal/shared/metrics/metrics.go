package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics of the gateway
type Metrics struct {
	registry *prometheus.Registry

	// Feed metrics
	FeedsRendered *prometheus.CounterVec
	FeedEntries   prometheus.Histogram

	// HTTP metrics
	HTTPErrors *prometheus.CounterVec

	// Media metrics
	MediaRequests *prometheus.CounterVec
	MediaBytes    prometheus.Counter

	// Upstream metrics
	UpstreamCalls  *prometheus.CounterVec
	UpstreamErrors *prometheus.CounterVec
	Reconnects     prometheus.Counter
	Connected      prometheus.Gauge
}

// New creates a Metrics instance backed by its own registry, so that
// several instances can coexist in tests.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		FeedsRendered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgfeed_feeds_rendered_total",
				Help: "Total number of feeds rendered",
			},
			[]string{"format"},
		),
		FeedEntries: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tgfeed_feed_entries",
			Help:    "Number of entries per rendered feed",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),
		HTTPErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgfeed_http_errors_total",
				Help: "Total number of failed feed, media and profile requests",
			},
			[]string{"route", "status"},
		),

		MediaRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgfeed_media_requests_total",
				Help: "Total number of media and avatar requests",
			},
			[]string{"kind"},
		),
		MediaBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "tgfeed_media_bytes_total",
			Help: "Total number of media bytes streamed to clients",
		}),

		UpstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgfeed_upstream_calls_total",
				Help: "Total number of MTProto calls",
			},
			[]string{"method"},
		),
		UpstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgfeed_upstream_errors_total",
				Help: "Total number of failed MTProto calls",
			},
			[]string{"method"},
		),
		Reconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "tgfeed_reconnects_total",
			Help: "Total number of reconnect and resync sequences",
		}),
		Connected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tgfeed_connected",
			Help: "1 when the MTProto session is connected",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
