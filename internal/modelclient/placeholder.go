// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package modelclient

import (
	"context"
	"io"
)

// Placeholder fields of every placeholder answer.
const (
	PlaceholderLabel      = "real"
	PlaceholderConfidence = 0.05
	PlaceholderModelName  = "placeholder"
)

// Placeholder answers deterministically without looking at the content.
// It lets the pipeline run end to end before real models are deployed;
// reports mark its results so they are never mistaken for a verdict.
type Placeholder struct{}

// PredictMedia returns the placeholder prediction.
func (Placeholder) PredictMedia(ctx context.Context, _ io.Reader, _ string) (*Prediction, error) {
	return placeholderPrediction(ctx)
}

// PredictText returns the placeholder prediction.
func (Placeholder) PredictText(ctx context.Context, _ string) (*Prediction, error) {
	return placeholderPrediction(ctx)
}

func placeholderPrediction(ctx context.Context) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Prediction{
		Label:       PlaceholderLabel,
		Confidence:  PlaceholderConfidence,
		Model:       PlaceholderModelName,
		Placeholder: true,
	}, nil
}
