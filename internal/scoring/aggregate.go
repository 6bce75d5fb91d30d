// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/truthx/internal/detection"
)

// RiskLevel is the coarse bucket derived from the score.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskUnknown RiskLevel = "unknown"
)

// Risk tier thresholds.
const (
	LowRiskMin    = 75
	MediumRiskMin = 45
)

// DefaultWeight is the penalty for a fully confident manipulation verdict
// from a detector without a configured weight.
const DefaultWeight = 100.0

// dangerConfidence is the confidence from which a manipulation verdict is
// reported as danger rather than warning.
const dangerConfidence = 0.7

// Anomaly is one entry of the ranked anomaly list.
type Anomaly struct {
	Label    string             `json:"label"`
	Detail   string             `json:"detail,omitempty"`
	Severity detection.Severity `json:"severity"`
	Source   string             `json:"source_detector"`
}

// Aggregate is the combined verdict over all detector results.
type Aggregate struct {
	// Score is nil when no detector returned StatusOK.
	Score      *int
	RiskLevel  RiskLevel
	Confidence int
	Anomalies  []Anomaly
	Insights   []string

	// Evidence counts the results with StatusOK.
	Evidence int
}

// Known reports whether the aggregate carries a score.
func (a Aggregate) Known() bool { return a.Score != nil }

// RiskFor maps a score onto its tier.
func RiskFor(score int) RiskLevel {
	switch {
	case score >= LowRiskMin:
		return RiskLow
	case score >= MediumRiskMin:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Aggregator scores detector results with per-detector weights.
type Aggregator struct {
	weights map[string]float64
}

// New creates an aggregator. Detectors missing from weights use
// DefaultWeight.
func New(weights map[string]float64) *Aggregator {
	w := make(map[string]float64, len(weights))
	for k, v := range weights {
		w[k] = v
	}
	return &Aggregator{weights: w}
}

// Weight returns the penalty weight of a detector.
func (a *Aggregator) Weight(detector string) float64 {
	if w, ok := a.weights[detector]; ok {
		return w
	}
	return DefaultWeight
}

// Aggregate combines results. It never fails: missing evidence yields the
// unknown branch.
func (a *Aggregator) Aggregate(results []detection.Result) Aggregate {
	agg := Aggregate{Insights: insights(results)}

	var penalty, confidenceSum float64
	for _, r := range results {
		if r.Status != detection.StatusOK {
			continue
		}
		agg.Evidence++
		confidenceSum += r.Confidence
		if IsManipulationLabel(r.Label) {
			penalty += r.Confidence * a.Weight(r.Detector)
		}
	}

	agg.Anomalies = anomalies(results)

	if agg.Evidence == 0 {
		agg.RiskLevel = RiskUnknown
		agg.Insights = append(agg.Insights, "No detector produced a usable result; authenticity cannot be assessed.")
		return agg
	}

	score := int(math.Round(math.Max(0, math.Min(100, 100-penalty))))
	agg.Score = &score
	agg.RiskLevel = RiskFor(score)
	agg.Confidence = int(math.Round(confidenceSum / float64(agg.Evidence) * 100))
	return agg
}

func insights(results []detection.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		switch r.Status {
		case detection.StatusOK:
			line := fmt.Sprintf("%s: %s (%d%% confidence)", r.Detector, r.Label, percent(r.Confidence))
			if r.Findings.Placeholder {
				line += " [placeholder model]"
			}
			out = append(out, line)
		case detection.StatusTimedOut:
			out = append(out, r.Detector+": timed out before producing a result")
		case detection.StatusSkipped:
			out = append(out, fmt.Sprintf("%s: skipped (%s)", r.Detector, r.Error))
		default:
			out = append(out, fmt.Sprintf("%s: failed (%s)", r.Detector, r.Error))
		}
	}
	return out
}

// anomalies gathers, orders and deduplicates anomalies.
func anomalies(results []detection.Result) []Anomaly {
	// Manipulation confidence per detector drives the secondary order.
	verdict := make(map[string]float64)
	var out []Anomaly

	for _, r := range results {
		if r.Status != detection.StatusOK {
			continue
		}
		for _, f := range r.Findings.Flags {
			out = append(out, Anomaly{Label: f.Label, Detail: f.Detail, Severity: f.Severity, Source: r.Detector})
		}
		if IsManipulationLabel(r.Label) {
			verdict[r.Detector] = r.Confidence
			sev := detection.SeverityWarning
			if r.Confidence >= dangerConfidence {
				sev = detection.SeverityDanger
			}
			out = append(out, Anomaly{
				Label:    verdictLabel(r.Detector),
				Detail:   fmt.Sprintf("%s (%d%% confidence)", r.Label, percent(r.Confidence)),
				Severity: sev,
				Source:   r.Detector,
			})
		}
		if r.Findings.Metadata != nil {
			out = append(out, consistencyAnomalies(r.Detector, r.Findings.Metadata)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if va, vb := verdict[a.Source], verdict[b.Source]; va != vb {
			return va > vb
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Label < b.Label
	})

	type key struct{ source, label string }
	seen := make(map[key]bool, len(out))
	deduped := out[:0]
	for _, an := range out {
		k := key{an.Source, an.Label}
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, an)
	}
	return deduped
}

func verdictLabel(detector string) string {
	switch detector {
	case detection.NameVideoDeepfake:
		return "Deepfake video"
	case detection.NameAudioVoiceClone:
		return "Cloned voice"
	case detection.NameImageManipulation:
		return "Manipulated image"
	case detection.NameTextOrigin:
		return "AI-generated text"
	case detection.NameMetadataForensics:
		return "Manipulated metadata"
	default:
		return "Manipulation detected"
	}
}

func percent(confidence float64) int {
	return int(math.Round(confidence * 100))
}
