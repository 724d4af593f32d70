package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service is the Prometheus-backed implementation of the Metrics interface.
type Service struct {
	ScheduleRuns       prometheus.Counter
	MatchesProcessed   prometheus.Counter
	RatingUpdates      prometheus.Counter
	BatchFailures      prometheus.Counter
	ProcessingDuration prometheus.Histogram
	StartupTimeSeconds prometheus.Gauge
}
