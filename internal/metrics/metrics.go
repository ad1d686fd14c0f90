// Package metrics expone los contadores de Prometheus del servicio.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedBuildsTotal cuenta feeds armados por tipo (feed, sections, goals).
	FeedBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "getabib_feed_builds_total",
			Help: "Total number of personalized feeds built",
		},
		[]string{"kind"},
	)

	FeedBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "getabib_feed_build_duration_seconds",
			Help:    "Duration of personalized feed builds in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"kind"},
	)

	RacesScoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "getabib_races_scored_total",
			Help: "Total number of races scored against a runner profile",
		},
	)

	// GoalTagsDetectedTotal cuenta tags detectados en textos de metas.
	GoalTagsDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "getabib_goal_tags_detected_total",
			Help: "Total number of goal tags detected in analyzed text",
		},
		[]string{"tag"},
	)

	QuizSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "getabib_quiz_submissions_total",
			Help: "Total number of personality quiz submissions by resulting type",
		},
		[]string{"personality"},
	)

	// UpstreamFetchesTotal cuenta pedidos a fuentes externas por resultado (ok, error, open).
	UpstreamFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "getabib_upstream_fetches_total",
			Help: "Total number of upstream race listing fetches",
		},
		[]string{"source", "result"},
	)

	UpstreamFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "getabib_upstream_fetch_duration_seconds",
			Help:    "Duration of upstream race listing fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// CircuitBreakerState: 0 cerrado, 1 semi-abierto, 2 abierto.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "getabib_circuit_breaker_state",
			Help: "Circuit breaker state per upstream (0=closed, 1=half-open, 2=open)",
		},
		[]string{"source"},
	)

	RaceCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "getabib_race_cache_size",
			Help: "Number of races currently cached",
		},
	)

	RaceCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "getabib_race_cache_lookups_total",
			Help: "Race cache lookups by outcome (hit, miss, stale)",
		},
		[]string{"outcome"},
	)
)

// ObserveFeedBuild registra un feed armado y su duracion.
func ObserveFeedBuild(kind string, started time.Time) {
	FeedBuildsTotal.WithLabelValues(kind).Inc()
	FeedBuildDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// ObserveUpstreamFetch registra el resultado de un pedido a una fuente externa.
func ObserveUpstreamFetch(source, result string, started time.Time) {
	UpstreamFetchesTotal.WithLabelValues(source, result).Inc()
	UpstreamFetchDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
}
