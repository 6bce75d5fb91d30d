// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8000/metrics

# Available Metrics

HTTP:
  - api_requests_total (method, endpoint, status_code)
  - api_request_duration_seconds (method, endpoint)
  - api_active_requests
  - api_rate_limit_hits_total (endpoint)
  - api_errors_total (code)

Analysis:
  - analyses_total (kind, risk_level)
  - analysis_duration_seconds (kind)
  - analyses_in_flight
  - authenticity_score (kind)
  - detector_runs_total (detector, status)
  - detector_duration_seconds (detector)

Content store:
  - content_store_bytes_written_total
  - content_store_entries
  - content_store_operations_total (operation, result)
  - content_store_rejected_total (reason)

Resilience:
  - circuit_breaker_state (name)
  - circuit_breaker_requests_total (name, result)
  - circuit_breaker_consecutive_failures (name)
  - circuit_breaker_state_transitions_total (name, from_state, to_state)

Other:
  - cache_hits_total, cache_misses_total (cache_type)
  - audit_events_dropped_total
  - app_info (version, go_version)

Metric labels never carry content, file names or request text.
*/
package metrics
