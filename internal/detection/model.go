// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package detection

import (
	"context"
	"errors"
	"strings"

	"github.com/tomtom215/truthx/internal/contentstore"
	"github.com/tomtom215/truthx/internal/logging"
	"github.com/tomtom215/truthx/internal/modelclient"
	"github.com/tomtom215/truthx/internal/probe"
)

// ModelDetector adapts a remote model to the Detector interface. It serves
// media models through MediaModel and text models through TextModel.
type ModelDetector struct {
	name       string
	modalities []contentstore.Modality
	backend    string
	media      modelclient.MediaModel
	text       modelclient.TextModel
	trace      bool
}

// NewMediaDetector creates a media adapter. A nil model makes every run
// report StatusSkipped.
func NewMediaDetector(name, backend string, model modelclient.MediaModel, modalities ...contentstore.Modality) *ModelDetector {
	return &ModelDetector{name: name, modalities: modalities, backend: backend, media: model}
}

// WithTrace exposes per-frame real probabilities as the result trace.
func (d *ModelDetector) WithTrace() *ModelDetector {
	d.trace = true
	return d
}

// NewTextDetector creates the text-origin adapter.
func NewTextDetector(backend string, model modelclient.TextModel) *ModelDetector {
	return &ModelDetector{
		name:       NameTextOrigin,
		modalities: []contentstore.Modality{contentstore.ModalityText},
		backend:    backend,
		text:       model,
	}
}

func (d *ModelDetector) Name() string                        { return d.name }
func (d *ModelDetector) Modalities() []contentstore.Modality { return d.modalities }
func (d *ModelDetector) Backend() string                     { return d.backend }

// Analyze runs the model over the input.
func (d *ModelDetector) Analyze(ctx context.Context, in Input) Result {
	var (
		p   *modelclient.Prediction
		err error
	)

	switch {
	case d.text != nil:
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return Failed(d.name, "no text to analyze")
		}
		p, err = d.text.PredictText(ctx, text)

	case d.media != nil:
		if in.Content == nil {
			return Failed(d.name, "no content to analyze")
		}
		rc, openErr := in.Content.Open(ctx)
		if openErr != nil {
			switch {
			case errors.Is(openErr, contentstore.ErrNotFound):
				return Failed(d.name, "content no longer available")
			case errors.Is(openErr, probe.ErrAudioExtraction):
				return Failed(d.name, "audio track could not be extracted")
			}
			return Failed(d.name, "content could not be read")
		}
		defer rc.Close()
		p, err = d.media.PredictMedia(ctx, rc, in.MimeType)

	default:
		return Skipped(d.name, "no model configured")
	}

	if err != nil {
		return d.failure(ctx, err)
	}
	return d.result(p)
}

func (d *ModelDetector) result(p *modelclient.Prediction) Result {
	findings := Findings{Placeholder: p.Placeholder}
	for _, f := range p.Findings {
		findings.Flags = append(findings.Flags, Flag{
			Label:    f.Label,
			Detail:   f.Detail,
			Severity: ParseSeverity(strings.ToLower(f.Severity)),
		})
	}
	if d.trace {
		findings.Trace = p.RealProbabilities()
	}
	if p.Model != "" {
		findings.Extra = map[string]any{"model": p.Model}
	}
	return OK(d.name, p.Label, p.Confidence, findings)
}

// failure turns a model error into a user-safe result.
func (d *ModelDetector) failure(ctx context.Context, err error) Result {
	if errors.Is(err, context.DeadlineExceeded) {
		return TimedOut(d.name)
	}

	reason := "model service error"
	switch {
	case errors.Is(err, context.Canceled):
		reason = "analysis canceled"
	case errors.Is(err, modelclient.ErrUnsupportedFormat):
		reason = "unsupported format"
	case errors.Is(err, modelclient.ErrCircuitOpen):
		reason = "model service temporarily disabled after repeated failures"
	case errors.Is(err, modelclient.ErrUnavailable):
		reason = "model service unavailable"
	case errors.Is(err, modelclient.ErrMalformedResponse):
		reason = "malformed model response"
	}

	logging.Ctx(ctx).Warn().
		Str("detector", d.name).
		Str("error", logging.SanitizeError(err.Error())).
		Msg("detector failed")
	return Failed(d.name, reason)
}
