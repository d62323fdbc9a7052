package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_sessions_started_total",
			Help: "Sessions that completed setup",
		},
	)
	SessionsWon = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_sessions_won_total",
			Help: "Sessions that reached the won phase",
		},
	)
	SetupFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_setup_failures_total",
			Help: "Setup attempts aborted by the symbol source",
		},
		[]string{"reason"},
	)
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "memory_sessions_active",
			Help: "Sessions currently registered",
		},
	)
	ClearSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "memory_clear_seconds",
			Help:    "Elapsed game time at the moment of winning",
			Buckets: []float64{15, 30, 45, 60, 90, 120, 180, 300, 600},
		},
	)
)

func init() {
	prometheus.MustRegister(SessionsStarted)
	prometheus.MustRegister(SessionsWon)
	prometheus.MustRegister(SetupFailures)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(ClearSeconds)
}
