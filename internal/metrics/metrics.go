// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamerec_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamerec_http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Recommendations counts queries by outcome: game, genre, none, ambiguous, error.
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerec_recommendations_total",
			Help: "Total number of recommendation queries by outcome",
		},
		[]string{"outcome", "transport"},
	)

	DatasetReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerec_dataset_reloads_total",
			Help: "Total number of dataset reload attempts",
		},
		[]string{"result"},
	)

	DatasetGames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gamerec_dataset_games",
			Help: "Number of games in the active dataset snapshot",
		},
	)

	DatasetLoadedAt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gamerec_dataset_loaded_timestamp_seconds",
			Help: "Unix time the active dataset snapshot was loaded",
		},
	)

	SyncClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gamerec_sync_clients",
			Help: "Number of connected sync clients (websocket and TCP)",
		},
	)
)

// RecordRecommendation increments the outcome counter for one query.
func RecordRecommendation(outcome, transport string) {
	Recommendations.WithLabelValues(outcome, transport).Inc()
}

// RecordReload tracks a reload attempt and, on success, the new snapshot size.
func RecordReload(ok bool, games int, loadedAtUnix float64) {
	if !ok {
		DatasetReloads.WithLabelValues("error").Inc()
		return
	}
	DatasetReloads.WithLabelValues("ok").Inc()
	RecordSnapshot(games, loadedAtUnix)
}

// RecordSnapshot sets the dataset gauges without counting a reload. Used for
// the initial load.
func RecordSnapshot(games int, loadedAtUnix float64) {
	DatasetGames.Set(float64(games))
	DatasetLoadedAt.Set(loadedAtUnix)
}
