// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package detection

import (
	"context"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/truthx/internal/contentstore"
	"github.com/tomtom215/truthx/internal/probe"
)

// Detector names.
const (
	NameVideoDeepfake     = "video-deepfake"
	NameAudioVoiceClone   = "audio-voiceclone"
	NameImageManipulation = "image-manipulation"
	NameTextOrigin        = "text-origin"
	NameMetadataForensics = "metadata-forensics"
)

// Status is the outcome of one detector run.
type Status string

const (
	StatusOK       Status = "ok"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
	StatusTimedOut Status = "timed_out"
)

// Severity indicates how strongly a finding points at manipulation.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Rank orders severities, danger first.
func (s Severity) Rank() int {
	switch s {
	case SeverityDanger:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// ParseSeverity maps the severity vocabularies used by model services onto
// the three levels. Unknown values are treated as info.
func ParseSeverity(s string) Severity {
	switch s {
	case "danger", "critical", "high":
		return SeverityDanger
	case "warning", "medium", "warn":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Flag is one flagged observation.
type Flag struct {
	Label    string   `json:"label"`
	Detail   string   `json:"detail,omitempty"`
	Severity Severity `json:"severity"`
}

// Findings is the raw evidence behind a Result.
type Findings struct {
	Flags []Flag `json:"flags,omitempty"`

	// Trace is the per-segment probability that the content is real.
	Trace []float64 `json:"trace,omitempty"`

	// Metadata is set by metadata-forensics only.
	Metadata *probe.MediaMetadata `json:"metadata,omitempty"`

	Extra       map[string]any `json:"extra,omitempty"`
	Placeholder bool           `json:"placeholder,omitempty"`
}

// Result is the output of one detector run.
//
// StatusOK populates Label and Confidence. StatusFailed populates Error.
// Confidence is serialized as null for any status other than StatusOK.
type Result struct {
	Detector   string
	Status     Status
	Label      string
	Confidence float64
	Findings   Findings
	Error      string
	Duration   time.Duration
}

type resultJSON struct {
	Detector   string   `json:"detector"`
	Status     Status   `json:"status"`
	Label      string   `json:"label,omitempty"`
	Confidence *float64 `json:"confidence"`
	Findings   Findings `json:"raw_findings"`
	Error      string   `json:"error,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Detector: r.Detector,
		Status:   r.Status,
		Label:    r.Label,
		Findings: r.Findings,
		Error:    r.Error,
	}
	if r.Status == StatusOK {
		confidence := r.Confidence
		out.Confidence = &confidence
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. A null confidence reads as 0.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Result{
		Detector: in.Detector,
		Status:   in.Status,
		Label:    in.Label,
		Findings: in.Findings,
		Error:    in.Error,
	}
	if in.Confidence != nil {
		r.Confidence = *in.Confidence
	}
	return nil
}

// OK builds a successful result.
func OK(detector, label string, confidence float64, findings Findings) Result {
	return Result{Detector: detector, Status: StatusOK, Label: label, Confidence: confidence, Findings: findings}
}

// Failed builds a failed result with a user-safe reason.
func Failed(detector, reason string) Result {
	return Result{Detector: detector, Status: StatusFailed, Error: reason}
}

// Skipped builds a result for a detector that had nothing to run.
func Skipped(detector, reason string) Result {
	return Result{Detector: detector, Status: StatusSkipped, Error: reason}
}

// TimedOut builds a result for a detector that missed its deadline.
func TimedOut(detector string) Result {
	return Result{Detector: detector, Status: StatusTimedOut, Error: "detector timed out"}
}

// ContentSource opens the stored bytes under analysis. A
// *contentstore.Lease satisfies it.
type ContentSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Input is what a detector examines. Content is set for media, Text for
// text queries.
type Input struct {
	Modality contentstore.Modality
	MimeType string
	Content  ContentSource
	Text     string
	Metadata *probe.MediaMetadata
}

// Detector examines one input. Analyze must return a Result for every
// expected fault instead of panicking.
type Detector interface {
	Name() string
	Modalities() []contentstore.Modality
	Analyze(ctx context.Context, in Input) Result
}

// ModelInfo describes the backend a detector runs on, for health reporting.
type ModelInfo interface {
	Backend() string
}
