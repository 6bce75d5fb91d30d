// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package api

import (
	"context"
	"io"
	"time"

	"github.com/tomtom215/truthx/internal/analysis"
	"github.com/tomtom215/truthx/internal/contentstore"
	"github.com/tomtom215/truthx/internal/detection"
	"github.com/tomtom215/truthx/internal/probe"
	"github.com/tomtom215/truthx/internal/report"
	"github.com/tomtom215/truthx/internal/scoring"
)

// DefaultMaxTextBytes caps the text field of an analyze request.
const DefaultMaxTextBytes = 1 << 20

// ContentStore is the part of the content store the handlers use.
type ContentStore interface {
	Put(ctx context.Context, r io.Reader, modality contentstore.Modality, mimeType string) (*contentstore.Content, error)
	Delete(ctx context.Context, id string) error
	MaxBytes() int64
	Ready() bool
}

// Analyzer runs one analysis request.
type Analyzer interface {
	Run(ctx context.Context, req analysis.Request) (*analysis.Outcome, error)
}

// ProbeChecker reports how media metadata is extracted.
type ProbeChecker interface {
	Mode(ctx context.Context) probe.Mode
}

// AnalysisLogger records finished analyses. Implementations must not block.
type AnalysisLogger interface {
	LogAnalysis(ctx context.Context, rep *report.Report)
}

// Dependencies are the collaborators of Handler. Audit may be nil.
type Dependencies struct {
	Store      ContentStore
	Analyzer   Analyzer
	Aggregator *scoring.Aggregator
	Prober     ProbeChecker
	Registry   *detection.Registry
	Audit      AnalysisLogger

	// MaxTextBytes caps text queries; zero means DefaultMaxTextBytes.
	MaxTextBytes int64
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_health.go: liveness probe
//   - handlers_analyze.go: upload streaming and report assembly
type Handler struct {
	store        ContentStore
	analyzer     Analyzer
	aggregator   *scoring.Aggregator
	prober       ProbeChecker
	registry     *detection.Registry
	audit        AnalysisLogger
	maxTextBytes int64
	now          func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(deps Dependencies) *Handler {
	if deps.MaxTextBytes <= 0 {
		deps.MaxTextBytes = DefaultMaxTextBytes
	}
	if deps.Aggregator == nil {
		deps.Aggregator = scoring.New(nil)
	}
	if deps.Registry == nil {
		deps.Registry = detection.NewRegistry()
	}
	return &Handler{
		store:        deps.Store,
		analyzer:     deps.Analyzer,
		aggregator:   deps.Aggregator,
		prober:       deps.Prober,
		registry:     deps.Registry,
		audit:        deps.Audit,
		maxTextBytes: deps.MaxTextBytes,
		now:          time.Now,
	}
}
