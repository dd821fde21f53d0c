// Package metrics exposes prometheus collectors for game sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomz197/points/internal/game"
)

var (
	GamesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_games_total",
			Help: "Games by outcome (started, won, lost)",
		},
		[]string{"frontend", "outcome"},
	)
	ActiveSessions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "points_active_sessions",
			Help: "Connected player sessions",
		},
		[]string{"frontend"},
	)
	ClearSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "points_clear_seconds",
			Help:    "Time taken to clear a board",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(GamesTotal)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(ClearSeconds)
}

// Observe records a game event reported by a controller.
func Observe(frontend string, ev game.Event) {
	GamesTotal.WithLabelValues(frontend, ev.Type.String()).Inc()
	if ev.Type == game.EventWon {
		ClearSeconds.Observe(float64(ev.Elapsed) / 100)
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
