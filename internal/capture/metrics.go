package capture

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_events_total",
			Help: "Lifecycle notifications received, by phase and outcome.",
		},
		[]string{"phase", "outcome"},
	)
	storeWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_store_writes_total",
			Help: "Drain cycles against the durable log store, by status.",
		},
		[]string{"status"},
	)
	drainCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recorder_drain_cycle_duration_seconds",
			Help:    "Duration of one read-modify-write cycle against the log store.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)
	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recorder_queue_depth",
			Help: "Updates waiting in the persistence queue.",
		},
	)
	trackedRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recorder_tracked_requests",
			Help: "Requests currently held in the correlation table.",
		},
	)
	recordingEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recorder_recording",
			Help: "1 while recording is on.",
		},
	)
)
