package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModelAttemptsTotal tracks attempts per model and outcome
	ModelAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toxichat_model_attempts_total",
			Help: "Total number of model invocation attempts",
		},
		[]string{"model", "outcome"},
	)

	// ModelAttemptLatency tracks model call latency
	ModelAttemptLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toxichat_model_attempt_latency_seconds",
			Help:    "Model call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	// ThrottleWaitSeconds tracks time spent waiting on the global throttle
	ThrottleWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "toxichat_throttle_wait_seconds",
			Help:    "Time spent waiting for an outbound call slot",
			Buckets: []float64{0, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// FailureCacheEntries tracks active failure records per kind
	FailureCacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "toxichat_failure_cache_entries",
			Help: "Active failure cache records by kind",
		},
		[]string{"kind"},
	)

	// PassesExhaustedTotal counts failover passes where every model failed
	PassesExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "toxichat_passes_exhausted_total",
			Help: "Failover passes that exhausted all eligible models",
		},
	)

	// HTTPRequestsTotal tracks inbound API requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toxichat_http_requests_total",
			Help: "Total number of inbound HTTP requests",
		},
		[]string{"path", "status"},
	)
)
