// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package audit

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for an unknown entry ID.
var ErrNotFound = errors.New("audit entry not found")

// Entry records one finished analysis. It carries the verdict and never
// the analyzed content, its file name or the submitted text.
type Entry struct {
	// ID is the unique entry identifier.
	ID string `json:"id"`

	// Timestamp is when the analysis finished.
	Timestamp time.Time `json:"timestamp"`

	// AnalysisID matches the report's analysis_id.
	AnalysisID string `json:"analysis_id"`

	// Kind is video, audio, image or text.
	Kind string `json:"kind"`

	// Score is nil when no detector produced a usable result.
	Score *int `json:"score"`

	RiskLevel  string `json:"risk_level"`
	Summary    string `json:"summary"`
	ModelsUsed string `json:"models_used"`
	DurationMS int64  `json:"duration_ms"`

	// DetectorStatuses maps detector name to ok, failed, skipped or timed_out.
	DetectorStatuses map[string]string `json:"detector_statuses"`

	// RequestID correlates the entry with access logs.
	RequestID string `json:"request_id,omitempty"`
}

// Store defines the interface for audit entry persistence.
type Store interface {
	// Save persists an entry.
	Save(ctx context.Context, entry *Entry) error

	// Get retrieves an entry by ID.
	Get(ctx context.Context, id string) (*Entry, error)

	// Query retrieves entries matching the filter, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]Entry, error)

	// Count returns the number of entries matching the filter.
	Count(ctx context.Context, filter QueryFilter) (int64, error)

	// Delete removes entries older than the given time.
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueryFilter defines filtering options for audit queries.
type QueryFilter struct {
	// Kinds filters by analysis kind.
	Kinds []string `json:"kinds,omitempty"`

	// RiskLevels filters by risk level.
	RiskLevels []string `json:"risk_levels,omitempty"`

	// StartTime is the beginning of the time range.
	StartTime *time.Time `json:"start_time,omitempty"`

	// EndTime is the end of the time range.
	EndTime *time.Time `json:"end_time,omitempty"`

	// Limit is the maximum number of results.
	Limit int `json:"limit,omitempty"`

	// Offset for pagination.
	Offset int `json:"offset,omitempty"`
}

// matches reports whether e satisfies every criterion of f except paging.
func (f *QueryFilter) matches(e *Entry) bool {
	if len(f.Kinds) > 0 && !contains(f.Kinds, e.Kind) {
		return false
	}
	if len(f.RiskLevels) > 0 && !contains(f.RiskLevels, e.RiskLevel) {
		return false
	}
	if f.StartTime != nil && e.Timestamp.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && e.Timestamp.After(*f.EndTime) {
		return false
	}
	return true
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
