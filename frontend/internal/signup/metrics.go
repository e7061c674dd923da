package signup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_dispatch_total",
			Help: "Finalizing API calls by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	lookupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_lookup_total",
			Help: "Name lookups by kind and outcome (ok, error, stale)",
		},
		[]string{"kind", "outcome"},
	)

	liveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "signup_live_sessions",
			Help: "Live lookup sessions currently held in memory",
		},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
