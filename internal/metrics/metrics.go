// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120}, // analyses run for minutes
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	APIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses by error code",
		},
		[]string{"code"},
	)

	// Analysis Metrics
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Total number of completed analyses",
		},
		[]string{"kind", "risk_level"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "End-to-end analysis duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 90, 120},
		},
		[]string{"kind"},
	)

	AnalysesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analyses_in_flight",
			Help: "Current number of analyses holding a concurrency slot",
		},
	)

	AuthenticityScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authenticity_score",
			Help:    "Distribution of authenticity scores (unknown results excluded)",
			Buckets: []float64{10, 20, 30, 45, 60, 75, 90, 100},
		},
		[]string{"kind"},
	)

	// Detector Metrics
	DetectorRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detector_runs_total",
			Help: "Total number of detector invocations by outcome status",
		},
		[]string{"detector", "status"}, // status: ok, failed, skipped, timed_out
	)

	DetectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "detector_duration_seconds",
			Help:    "Detector invocation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 90},
		},
		[]string{"detector"},
	)

	// Content Store Metrics
	ContentStoreBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_store_bytes_written_total",
			Help: "Total bytes written to the ephemeral content store",
		},
	)

	ContentStoreEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "content_store_entries",
			Help: "Current number of stored content blobs",
		},
	)

	ContentStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_store_operations_total",
			Help: "Total number of content store operations",
		},
		[]string{"operation", "result"}, // operation: put, open, delete, sweep
	)

	ContentStoreRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_store_rejected_total",
			Help: "Total number of uploads rejected before storage",
		},
		[]string{"reason"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Audit Metrics
	AuditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_dropped_total",
			Help: "Total number of audit events dropped because the buffer was full",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDetectorRun records one detector outcome.
func RecordDetectorRun(detector, status string, duration time.Duration) {
	DetectorRuns.WithLabelValues(detector, status).Inc()
	DetectorDuration.WithLabelValues(detector).Observe(duration.Seconds())
}

// RecordAnalysis records a completed analysis. A negative score marks the
// unknown sentinel and is not observed in the score histogram.
func RecordAnalysis(kind, riskLevel string, score int, duration time.Duration) {
	AnalysesTotal.WithLabelValues(kind, riskLevel).Inc()
	AnalysisDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if score >= 0 {
		AuthenticityScore.WithLabelValues(kind).Observe(float64(score))
	}
}

// RecordStoreOperation records a content store operation result.
func RecordStoreOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ContentStoreOperations.WithLabelValues(operation, result).Inc()
}

// RecordCacheAccess records a cache hit or miss for the named cache.
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	CacheMisses.WithLabelValues(cacheType).Inc()
}
