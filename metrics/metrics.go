// Package metrics provides Prometheus metrics for campusdash.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport"
	OutcomeStatus    = "status"
	OutcomeMalformed = "malformed"
)

var (
	// FetchTotal counts upstream fetches by outcome.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusdash",
			Name:      "fetch_total",
			Help:      "Total number of upstream fetches",
		},
		[]string{"panel", "outcome"},
	)

	// FetchDuration measures how long upstream fetches take, whatever their outcome.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campusdash",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of upstream fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"panel"},
	)

	// SeriesPoints is the length of the series currently shown by a panel.
	SeriesPoints = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "campusdash",
			Name:      "series_points",
			Help:      "Number of points in the current series",
		},
		[]string{"panel"},
	)

	SSEClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "campusdash",
			Name:      "sse_clients",
			Help:      "Number of connected dashboard update streams",
		},
	)
)

// RecordFetch records one completed fetch.
func RecordFetch(panel, outcome string, duration float64) {
	FetchTotal.WithLabelValues(panel, outcome).Inc()
	FetchDuration.WithLabelValues(panel).Observe(duration)
}

func SetSeriesPoints(panel string, n int) {
	SeriesPoints.WithLabelValues(panel).Set(float64(n))
}
