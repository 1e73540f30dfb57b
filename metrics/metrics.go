// Package metrics provides Prometheus metrics for the deck generator.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts finished generation requests by outcome.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deckgen",
			Name:      "generations_total",
			Help:      "Total number of deck generation requests by outcome",
		},
		[]string{"outcome"},
	)

	// UpstreamAttemptsTotal counts classified model calls.
	UpstreamAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deckgen",
			Name:      "upstream_attempts_total",
			Help:      "Total number of upstream model attempts by classification",
		},
		[]string{"outcome"},
	)

	// RenderDuration measures slide rendering time.
	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "deckgen",
			Name:      "render_duration_seconds",
			Help:      "Duration of deck rendering in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// ThemeSelectedTotal counts which theme each deck ended up with.
	ThemeSelectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deckgen",
			Name:      "theme_selected_total",
			Help:      "Total number of decks rendered per theme",
		},
		[]string{"theme"},
	)

	// FilesSweptTotal counts generated files removed after retention.
	FilesSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deckgen",
			Name:      "files_swept_total",
			Help:      "Total number of generated files removed by the sweeper",
		},
	)
)

// RecordGeneration records the outcome of one request.
func RecordGeneration(outcome string) {
	GenerationsTotal.WithLabelValues(outcome).Inc()
}

// RecordAttempt records one classified upstream attempt.
func RecordAttempt(outcome string) {
	UpstreamAttemptsTotal.WithLabelValues(outcome).Inc()
}

func RecordRender(d time.Duration) {
	RenderDuration.Observe(d.Seconds())
}

func RecordTheme(name string) {
	ThemeSelectedTotal.WithLabelValues(name).Inc()
}

func RecordSwept(n int) {
	FilesSweptTotal.Add(float64(n))
}
