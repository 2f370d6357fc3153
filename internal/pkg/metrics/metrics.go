// Package metrics exposes Prometheus counters for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BarsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bars_ingested_total", Help: "Daily bars appended to the history store"},
		[]string{"ticker"},
	)
	SignalsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_emitted_total", Help: "Trade events emitted by the state machine"},
		[]string{"ticker", "signal"},
	)
	BacktestsRun = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtests_run_total", Help: "Completed backtest runs"},
		[]string{"strategy"},
	)
	PullErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pull_errors_total", Help: "Failed price pulls"},
		[]string{"ticker"},
	)
)

func init() {
	prometheus.MustRegister(BarsIngested, SignalsEmitted, BacktestsRun, PullErrors)
}
