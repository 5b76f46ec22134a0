// Package metrics exposes Prometheus collectors for the monitor's
// reconstruction passes. Scraped via the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "pairwatch_refresh_duration_seconds",
		Help: "Duration of one snapshot recomputation pass",
	})

	RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairwatch_refresh_total",
		Help: "Total number of snapshot recomputation passes",
	}, []string{"result"})

	UnmatchedClosers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairwatch_unmatched_closers_total",
		Help: "Closing orders dropped because no opening order matched",
	})

	PriceFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairwatch_price_fallbacks_total",
		Help: "Live price lookups that fell back to the entry price",
	})

	OpenPairs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pairwatch_open_pairs",
		Help: "Open trade pairs in the latest snapshot",
	})

	ClosedPairs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pairwatch_closed_pairs",
		Help: "Closed trade pairs in the latest snapshot",
	})

	TotalPnL = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pairwatch_total_pnl",
		Help: "Portfolio PnL (realized + unrealized) in the latest snapshot",
	})
)
