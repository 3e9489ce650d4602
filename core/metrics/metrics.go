package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_cycles_total",
		Help: "Completed arbitrage cycles, any outcome.",
	})

	CycleSkipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_cycle_skips_total",
		Help: "Cycles that ended without a bundle, by reason.",
	}, []string{"reason"})

	BundlesSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_bundles_submitted_total",
		Help: "Bundles accepted by the relay.",
	})

	SubmitErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_submit_errors_total",
		Help: "Bundle submissions rejected or failed.",
	})

	LastGrossDiff = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arb_last_gross_diff_lamports",
		Help: "Gross diff of the most recent priced round trip.",
	})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_cycle_duration_seconds",
		Help:    "Wall time of one full cycle.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)
