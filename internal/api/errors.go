// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/truthx/internal/analysis"
	"github.com/tomtom215/truthx/internal/contentstore"
)

// Request-level errors raised while reading the upload.
var (
	// ErrUnsupportedFormat indicates the upload's sniffed type is not
	// accepted for the requested kind.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidForm indicates a malformed or incomplete multipart form.
	ErrInvalidForm = errors.New("invalid form")
)

// Error codes for API responses
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeContentTooLarge    = "CONTENT_TOO_LARGE"
	ErrCodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	ErrCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
)

// apiError is a sentinel translated to its wire form. The message is fixed
// per sentinel; wrapped detail never reaches the client.
type apiError struct {
	status  int
	code    string
	message string
}

// classify maps an error from the upload path or the orchestrator onto an
// API error. Unknown errors become INTERNAL_ERROR.
func classify(err error) apiError {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, contentstore.ErrContentTooLarge), errors.As(err, &maxBytes):
		return apiError{http.StatusRequestEntityTooLarge, ErrCodeContentTooLarge, "Upload exceeds the size limit"}
	case errors.Is(err, ErrUnsupportedFormat):
		return apiError{http.StatusUnsupportedMediaType, ErrCodeUnsupportedFormat, "Unsupported file format for the requested kind"}
	case errors.Is(err, contentstore.ErrEmptyContent):
		return apiError{http.StatusBadRequest, ErrCodeInvalidRequest, "Uploaded file is empty"}
	case errors.Is(err, ErrInvalidForm), errors.Is(err, analysis.ErrInvalidRequest):
		return apiError{http.StatusBadRequest, ErrCodeInvalidRequest, "Provide exactly one of a file or text"}
	case errors.Is(err, analysis.ErrBackendUnavailable), errors.Is(err, contentstore.ErrStoreClosed):
		return apiError{http.StatusServiceUnavailable, ErrCodeBackendUnavailable, "Analysis backend is unavailable; try again later"}
	case errors.Is(err, analysis.ErrMetadataExtraction):
		return apiError{http.StatusInternalServerError, ErrCodeInternalError, "Media metadata could not be extracted"}
	case errors.Is(err, context.DeadlineExceeded):
		return apiError{http.StatusServiceUnavailable, ErrCodeBackendUnavailable, "Analysis timed out"}
	default:
		return apiError{http.StatusInternalServerError, ErrCodeInternalError, "Internal error"}
	}
}
