// Package metrics exposes Prometheus instrumentation for the scan pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InstrumentsProcessed counts every instrument a scan dispatched.
	InstrumentsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "factorai_instruments_processed_total",
		Help: "Instruments processed across all scans",
	})

	// InstrumentsQualified counts instruments that passed every gate and
	// reached the minimum score.
	InstrumentsQualified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "factorai_instruments_qualified_total",
		Help: "Instruments that produced a qualifying score result",
	})

	// ProviderErrors counts upstream failures by pipeline stage.
	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factorai_provider_errors_total",
		Help: "Provider failures by pipeline stage",
	}, []string{"stage"})

	// ScanDuration observes end-to-end scan wall time.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "factorai_scan_duration_seconds",
		Help:    "End-to-end scan duration",
		Buckets: prometheus.ExponentialBuckets(30, 2, 8),
	})
)
