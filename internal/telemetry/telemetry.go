// Package telemetry exposes Prometheus metrics for the contextual-news
// service.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all service Prometheus metrics.
type Metrics struct {
	// Trending pipeline
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	TrendingSeconds prometheus.Histogram

	// Enrichment
	SummariesGenerated prometheus.Counter
	SummaryFallbacks   prometheus.Counter

	// Event ingestion
	EventsLogged   *prometheus.CounterVec
	EventsRejected prometheus.Counter
}

// NewMetrics registers all metrics with the given registerer. Tests pass a
// fresh prometheus.NewRegistry to avoid duplicate registration in the
// default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "news_trending_cache_hits_total",
			Help: "Trending queries answered from the spatial cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "news_trending_cache_misses_total",
			Help: "Trending queries that required a full computation",
		}),
		TrendingSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "news_trending_compute_seconds",
			Help:    "Duration of uncached trending computations (scan, score, resolve, enrich)",
			Buckets: prometheus.DefBuckets,
		}),
		SummariesGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "news_summaries_generated_total",
			Help: "Article summaries generated successfully",
		}),
		SummaryFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "news_summary_fallbacks_total",
			Help: "Article summaries replaced with the fallback placeholder",
		}),
		EventsLogged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "news_events_logged_total",
			Help: "Interaction events accepted, by event type",
		}, []string{"event_type"}),
		EventsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "news_events_rejected_total",
			Help: "Interaction events rejected for referencing an unknown article",
		}),
	}
}

// NewDefaultMetrics registers metrics with the default registry.
func NewDefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
