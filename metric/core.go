package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Poll cycle result label values.
const (
	ResultNoChange      = "no_change"
	ResultReloaded      = "reloaded"
	ResultFetchFailed   = "fetch_failed"
	ResultCompileFailed = "compile_failed"
	ResultSkipped       = "skipped"
)

// Metrics contains all reload-pipeline metrics (not host-specific)
type Metrics struct {
	// Poll cycle metrics
	PollCycles     *prometheus.CounterVec
	ReloadDuration *prometheus.HistogramVec
	LastReload     *prometheus.GaugeVec

	// Compiled map metrics
	SynonymRules *prometheus.GaugeVec
	SynonymTerms *prometheus.GaugeVec

	// Consumer metrics
	ActiveConsumers prometheus.Gauge

	// Source metrics
	SourceUp *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all pipeline metrics
func NewMetrics() *Metrics {
	return &Metrics{
		PollCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dynsynonym",
				Subsystem: "poll",
				Name:      "cycles_total",
				Help:      "Total number of poll cycles by outcome",
			},
			[]string{"source", "result"},
		),

		ReloadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dynsynonym",
				Subsystem: "reload",
				Name:      "duration_seconds",
				Help:      "Time spent fetching and compiling a new synonym map",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),

		LastReload: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "dynsynonym",
				Subsystem: "reload",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix timestamp of the last successful reload",
			},
			[]string{"source"},
		),

		SynonymRules: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "dynsynonym",
				Subsystem: "map",
				Name:      "rules",
				Help:      "Number of rules in the currently served synonym map",
			},
			[]string{"source"},
		),

		SynonymTerms: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "dynsynonym",
				Subsystem: "map",
				Name:      "terms",
				Help:      "Number of distinct lookup terms in the currently served synonym map",
			},
			[]string{"source"},
		),

		ActiveConsumers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "dynsynonym",
				Subsystem: "filter",
				Name:      "active_consumers",
				Help:      "Number of registered live token filter consumers",
			},
		),

		SourceUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "dynsynonym",
				Subsystem: "source",
				Name:      "up",
				Help:      "Whether the last contact with the source succeeded (0=down, 1=up)",
			},
			[]string{"source"},
		),
	}
}
