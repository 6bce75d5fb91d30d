// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	analysisIDKey contextKey = "analysis_id"
)

// GenerateRequestID creates a new unique request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID returns a new context with the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithAnalysisID returns a new context carrying the analysis ID.
// The analysis ID is the ephemeral content ID for uploads, or a fresh UUID for
// text queries.
func ContextWithAnalysisID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, analysisIDKey, id)
}

// AnalysisIDFromContext retrieves the analysis ID from context.
func AnalysisIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(analysisIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns a logger with request_id and analysis_id attached when present.
//
//	logging.Ctx(ctx).Info().Str("detector", name).Msg("Detector finished")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := CtxWith(ctx).Logger()
	return &logger
}

// CtxWith returns a logger context builder with the context fields pre-populated.
func CtxWith(ctx context.Context) zerolog.Context {
	logCtx := Logger().With()
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}
	if analysisID := AnalysisIDFromContext(ctx); analysisID != "" {
		logCtx = logCtx.Str("analysis_id", analysisID)
	}
	return logCtx
}

// WithComponent creates a child logger with a component field.
//
//	log := logging.WithComponent("orchestrator")
func WithComponent(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}
