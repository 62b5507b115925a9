package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// turnsTotal counts completed turns by emitted action kind
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebot_turns_total",
		Help: "Dialog turns by emitted action kind",
	}, []string{"action"})

	// resolveDuration tracks catalog query latency
	resolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipebot_resolve_duration_seconds",
		Help:    "Catalog query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"mode"})

	// backendErrors counts failed catalog operations
	backendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebot_backend_errors_total",
		Help: "Failed catalog operations by operation",
	}, []string{"operation"})

	droppedIntents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipebot_dropped_intents_total",
		Help: "Malformed intents dropped before belief tracking",
	})

	expiredSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipebot_expired_sessions_total",
		Help: "Idle sessions removed by the expirer",
	})
)
