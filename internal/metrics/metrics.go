package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// Routing metrics
	MessagesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_messages_routed_total",
			Help: "Total messages routed, by responder variant",
		},
		[]string{"variant"},
	)

	ClassificationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_classification_fallbacks_total",
			Help: "Total classifications that fell back to the support variant",
		},
	)

	IntentsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_intents_executed_total",
			Help: "Total intents dispatched to tool executors",
		},
		[]string{"kind", "status"},
	)

	// Queue metrics
	JobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_jobs_enqueued_total",
			Help: "Total jobs enqueued",
		},
		[]string{"topic"},
	)

	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_jobs_processed_total",
			Help: "Total jobs processed by workers",
		},
		[]string{"topic", "status"},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_rate_limit_hits_total",
			Help: "Total rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Reasoning engine metrics
	EngineLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_engine_latency_seconds",
			Help:    "Reasoning engine completion latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	EngineTokens = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_engine_tokens_total",
			Help: "Total tokens reported by the reasoning engine",
		},
	)
)
