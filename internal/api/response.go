// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/truthx/internal/logging"
	"github.com/tomtom215/truthx/internal/metrics"
)

// APIResponse is the error envelope. Successful analyses return the report
// body itself.
type APIResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details lists per-field validation messages (optional)
	Details []string `json:"details,omitempty"`

	// RequestID is the request ID for tracing
	RequestID string `json:"request_id,omitempty"`
}

// respondError writes the error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details []string) {
	metrics.APIErrors.WithLabelValues(code).Inc()
	writeJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// respondClassified writes the envelope for err and logs it. Server-side
// faults log at error level, client faults at debug.
func respondClassified(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	event := logging.Ctx(r.Context()).Debug()
	if e.status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("code", e.code).Msg("Analysis request failed")
	respondError(w, r, e.status, e.code, e.message, nil)
}

// writeJSON writes JSON response with proper headers.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Err(err).Msg("Failed to encode JSON response")
	}
}
