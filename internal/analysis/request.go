// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package analysis

import (
	"errors"
	"strings"
	"time"

	"github.com/tomtom215/truthx/internal/articles"
	"github.com/tomtom215/truthx/internal/contentstore"
	"github.com/tomtom215/truthx/internal/detection"
	"github.com/tomtom215/truthx/internal/probe"
)

// Sentinel errors
var (
	ErrBackendUnavailable = errors.New("analysis backend unavailable")
	ErrMetadataExtraction = errors.New("metadata extraction failed")
	ErrInvalidRequest     = errors.New("invalid analysis request")
)

// Request is one analysis job. Exactly one of ContentID and Text is set.
type Request struct {
	ID         string
	Kind       contentstore.Modality
	ContentID  string
	Text       string
	ReceivedAt time.Time
}

// Validate checks the one-of rule and the declared kind.
func (r Request) Validate() error {
	hasContent, hasText := r.ContentID != "", strings.TrimSpace(r.Text) != ""
	switch {
	case hasContent == hasText:
		return errors.Join(ErrInvalidRequest, errors.New("exactly one of content and text is required"))
	case !r.Kind.Valid():
		return errors.Join(ErrInvalidRequest, errors.New("unknown kind "+string(r.Kind)))
	case hasText && r.Kind != contentstore.ModalityText:
		return errors.Join(ErrInvalidRequest, errors.New("text queries must be of kind text"))
	case hasContent && !r.Kind.IsMedia():
		return errors.Join(ErrInvalidRequest, errors.New("uploads must be video, audio or image"))
	}
	return nil
}

// Outcome is everything the orchestrator learned about a request.
type Outcome struct {
	Results  []detection.Result
	Metadata *probe.MediaMetadata
	Articles []articles.Article

	// Notes are operational remarks for the report, such as a failed
	// article lookup.
	Notes []string

	Duration time.Duration
}
