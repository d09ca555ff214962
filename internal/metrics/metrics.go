// Package metrics holds the Prometheus collectors for the scrape pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsNamespace is the namespace for all leads metrics.
const MetricsNamespace = "leads"

// Metrics holds all Prometheus metrics for scraping and persistence.
type Metrics struct {
	ScrapeRuns          *prometheus.CounterVec
	ScrapeDuration      prometheus.Histogram
	ScrapesInFlight     prometheus.Gauge
	CardsSkipped        prometheus.Counter
	ProfilesUpserted    prometheus.Counter
	PersistenceWarnings prometheus.Counter
}

// NewMetrics creates and registers the collectors on reg, or on the default
// registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ScrapeRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "scrape_runs_total",
				Help:      "Total number of scrape runs by outcome",
			},
			[]string{"outcome"},
		),
		ScrapeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Name:      "scrape_duration_seconds",
				Help:      "Duration of scrape runs in seconds, queueing excluded",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~8.5min
			},
		),
		ScrapesInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: MetricsNamespace,
				Name:      "scrapes_in_flight",
				Help:      "Number of scrape runs holding a browser session",
			},
		),
		CardsSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "cards_skipped_total",
				Help:      "Result cards discarded because they could not be parsed",
			},
		),
		ProfilesUpserted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "profiles_upserted_total",
				Help:      "Profiles committed to the store",
			},
		),
		PersistenceWarnings: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "persistence_warnings_total",
				Help:      "Profiles the store rejected during a scrape",
			},
		),
	}
}

// ObserveRun records one finished scrape run
func (m *Metrics) ObserveRun(outcome string, elapsed time.Duration) {
	m.ScrapeRuns.WithLabelValues(outcome).Inc()
	m.ScrapeDuration.Observe(elapsed.Seconds())
}
