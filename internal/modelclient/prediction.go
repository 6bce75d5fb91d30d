// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package modelclient

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors
var (
	ErrCircuitOpen       = errors.New("model service circuit open")
	ErrUnavailable       = errors.New("model service unavailable")
	ErrUnsupportedFormat = errors.New("model service does not support this format")
	ErrMalformedResponse = errors.New("malformed model response")
	ErrNotConfigured     = errors.New("model service not configured")
)

// Prediction is a model service answer.
type Prediction struct {
	Label      string               `json:"label"`
	Confidence float64              `json:"confidence"`
	PerFrame   []map[string]float64 `json:"per_frame,omitempty"`
	Findings   []Finding            `json:"findings,omitempty"`
	Model      string               `json:"model,omitempty"`

	// Placeholder is set by Placeholder, never by a remote service.
	Placeholder bool `json:"-"`
}

// Finding is a flagged observation reported by a model.
type Finding struct {
	Label    string `json:"label"`
	Detail   string `json:"detail,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// Validate normalises the label and rejects answers the scorer cannot use.
func (p *Prediction) Validate() error {
	p.Label = strings.ToLower(strings.TrimSpace(p.Label))
	if p.Label == "" {
		return fmt.Errorf("%w: missing label", ErrMalformedResponse)
	}
	if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrMalformedResponse, p.Confidence)
	}
	return nil
}

// RealProbabilities extracts the per-frame probability that content is
// real. Frames without a "Real" or "real" entry are skipped.
func (p *Prediction) RealProbabilities() []float64 {
	if len(p.PerFrame) == 0 {
		return nil
	}
	out := make([]float64, 0, len(p.PerFrame))
	for _, frame := range p.PerFrame {
		v, ok := frame["Real"]
		if !ok {
			v, ok = frame["real"]
		}
		if !ok || math.IsNaN(v) {
			continue
		}
		out = append(out, math.Max(0, math.Min(1, v)))
	}
	return out
}
