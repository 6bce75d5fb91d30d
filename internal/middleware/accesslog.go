// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/truthx/internal/logging"
)

// DefaultSlowRequestThreshold marks requests that are logged at warn level.
// Analyses legitimately take tens of seconds, so this is deliberately high.
const DefaultSlowRequestThreshold = 60 * time.Second

// AccessLog logs one line per completed request using the request-scoped
// logger. Query strings and bodies are never logged.
func AccessLog(slowThreshold time.Duration) func(http.Handler) http.Handler {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowRequestThreshold
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := newStatusRecorder(w)

			next.ServeHTTP(wrapper, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())
			event := logger.Info()
			switch {
			case wrapper.statusCode >= 500:
				event = logger.Error()
			case duration > slowThreshold:
				event = logger.Warn().Dur("threshold", slowThreshold)
			}
			event.
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Int("status", wrapper.statusCode).
				Int64("bytes", wrapper.bytes).
				Dur("duration", duration).
				Msg("request completed")
		})
	}
}
