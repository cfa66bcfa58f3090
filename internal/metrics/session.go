package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsStartedCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fitness",
			Subsystem: "session",
			Name:      "started_total",
			Help:      "The number of workout sessions started.",
		})

	// SessionsEndedCount counts sessions by terminal outcome.
	SessionsEndedCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitness",
			Subsystem: "session",
			Name:      "ended_total",
			Help:      "The number of workout sessions that reached a terminal phase.",
		}, []string{"outcome"}) // outcome: completed, quit

	ActiveSessionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fitness",
			Subsystem: "session",
			Name:      "active",
			Help:      "The number of sessions with a running ticker.",
		})

	CompletedSessionMinutes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fitness",
		Subsystem: "session",
		Name:      "completed_duration_minutes",
		Help:      "Bucketed histogram of active minutes in completed sessions",
		Buckets:   []float64{5, 10, 15, 20, 30, 45, 60, 90},
	})

	WorkoutLogPersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fitness",
			Subsystem: "history",
			Name:      "persist_failures_total",
			Help:      "The number of workout logs that could not be saved.",
		})

	// CatalogLoadCount counts catalog loads by where the data came from.
	CatalogLoadCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitness",
			Subsystem: "catalog",
			Name:      "load_total",
			Help:      "The number of catalog loads by source.",
		}, []string{"source"}) // source: cache, remote, stale_cache, error
)

// Register registers all metrics with registry.
func Register(registry prometheus.Registerer) {
	registry.MustRegister(SessionsStartedCount)
	registry.MustRegister(SessionsEndedCount)
	registry.MustRegister(ActiveSessionsGauge)
	registry.MustRegister(CompletedSessionMinutes)
	registry.MustRegister(WorkoutLogPersistFailures)
	registry.MustRegister(CatalogLoadCount)
}
