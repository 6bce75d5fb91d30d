// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package middleware provides HTTP middleware components for the API router.

Key Components:

  - RequestID: request ID assignment and logging context propagation
  - PrometheusMetrics: request count, latency and in-flight instrumentation
  - AccessLog: one structured log line per request, with slow request warnings

All middleware uses the func(http.Handler) http.Handler shape so it can be
mounted with chi's Router.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(middleware.DefaultSlowRequestThreshold))

Metrics and log lines are labelled with the chi route pattern, never the raw
URL, and never include request bodies.
*/
package middleware
