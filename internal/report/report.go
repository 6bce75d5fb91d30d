// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/truthx/internal/analysis"
	"github.com/tomtom215/truthx/internal/articles"
	"github.com/tomtom215/truthx/internal/detection"
	"github.com/tomtom215/truthx/internal/scoring"
)

// Status labels by risk level.
const (
	StatusAuthentic            = "Authentic"
	StatusSuspicious           = "Suspicious"
	StatusLikelyManipulated    = "Likely Manipulated"
	StatusInsufficientEvidence = "Insufficient Evidence"
)

// Values of Report.ModelsUsed.
const (
	ModelsReal        = "real"
	ModelsPlaceholder = "placeholder"
)

// Report is the authenticity report. It is immutable once built.
type Report struct {
	AnalysisID      string             `json:"analysis_id,omitempty"`
	Kind            string             `json:"kind"`
	Score           *int               `json:"score"`
	RiskLevel       scoring.RiskLevel  `json:"risk_level"`
	StatusLabel     string             `json:"status_label"`
	Confidence      int                `json:"confidence"`
	Summary         string             `json:"summary"`
	Anomalies       []scoring.Anomaly  `json:"anomalies"`
	Insights        []string           `json:"insights"`
	Fingerprint     []Section          `json:"fingerprint"`
	DriftTimeline   []DriftPoint       `json:"drift_timeline"`
	DetectorResults []detection.Result `json:"detector_results"`
	ModelsUsed      string             `json:"models_used"`
	RelatedArticles []articles.Article `json:"related_articles"`
	AnalyzedAt      time.Time          `json:"analyzed_at"`
	DurationMS      int64              `json:"duration_ms"`
}

// Options carries values Build must not compute itself.
type Options struct {
	AnalyzedAt      time.Time
	Duration        time.Duration
	RelatedArticles []articles.Article
	Notes           []string
}

// Build assembles the report.
func Build(req analysis.Request, results []detection.Result, agg scoring.Aggregate, opts Options) *Report {
	r := &Report{
		AnalysisID:      req.ID,
		Kind:            string(req.Kind),
		Score:           agg.Score,
		RiskLevel:       agg.RiskLevel,
		StatusLabel:     StatusLabel(agg.RiskLevel),
		Confidence:      agg.Confidence,
		Anomalies:       nonNil(agg.Anomalies),
		Insights:        append(append([]string{}, agg.Insights...), opts.Notes...),
		DetectorResults: nonNil(results),
		ModelsUsed:      modelsUsed(results),
		RelatedArticles: nonNil(opts.RelatedArticles),
		AnalyzedAt:      opts.AnalyzedAt.UTC(),
		DurationMS:      opts.Duration.Milliseconds(),
	}

	forensics := findResult(results, detection.NameMetadataForensics)
	if forensics != nil && forensics.Findings.Metadata != nil {
		r.Fingerprint = Fingerprint(forensics.Findings.Metadata)
	}
	r.Fingerprint = nonNil(r.Fingerprint)

	r.DriftTimeline = nonNil(driftFromResults(results, forensics))
	r.Summary = summary(results, len(opts.RelatedArticles))
	return r
}

// StatusLabel maps a risk level onto its display label.
func StatusLabel(level scoring.RiskLevel) string {
	switch level {
	case scoring.RiskLow:
		return StatusAuthentic
	case scoring.RiskMedium:
		return StatusSuspicious
	case scoring.RiskHigh:
		return StatusLikelyManipulated
	default:
		return StatusInsufficientEvidence
	}
}

func modelsUsed(results []detection.Result) string {
	for _, r := range results {
		if r.Status == detection.StatusOK && r.Findings.Placeholder {
			return ModelsPlaceholder
		}
	}
	return ModelsReal
}

var summaryNames = map[string]string{
	detection.NameVideoDeepfake:     "Video",
	detection.NameAudioVoiceClone:   "Audio",
	detection.NameImageManipulation: "Image",
	detection.NameTextOrigin:        "Text",
	detection.NameMetadataForensics: "Metadata",
}

// summary renders "Video: fake (94% confidence) | Text: ... | 2 related article(s) found".
func summary(results []detection.Result, related int) string {
	var parts []string
	for _, r := range results {
		if r.Status != detection.StatusOK {
			continue
		}
		name, ok := summaryNames[r.Detector]
		if !ok {
			name = r.Detector
		}
		parts = append(parts, fmt.Sprintf("%s: %s (%d%% confidence)", name, r.Label, int(math.Round(r.Confidence*100))))
	}
	if related > 0 {
		parts = append(parts, fmt.Sprintf("%d related article(s) found", related))
	}
	if len(parts) == 0 {
		return "Analysis complete"
	}
	return strings.Join(parts, " | ")
}

func findResult(results []detection.Result, name string) *detection.Result {
	for i := range results {
		if results[i].Detector == name && results[i].Status == detection.StatusOK {
			return &results[i]
		}
	}
	return nil
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
