package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FlowRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_flow_requests_total",
			Help: "Total number of model flow invocations",
		},
		[]string{"flow", "provider", "status"},
	)

	FlowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "study_flow_duration_seconds",
			Help:    "Duration of model flow invocations in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"flow", "provider"},
	)

	UploadsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_uploads_rejected_total",
			Help: "Uploads rejected by validation",
		},
		[]string{"reason"},
	)

	SessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_session_events_total",
			Help: "Study session workflow events",
		},
		[]string{"event"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "study_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
