// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package detection

import (
	"fmt"

	"github.com/tomtom215/truthx/internal/config"
	"github.com/tomtom215/truthx/internal/contentstore"
	"github.com/tomtom215/truthx/internal/modelclient"
)

// Backend names reported by ModelInfo.
const (
	BackendModel       = "model"
	BackendOpenAI      = "openai"
	BackendPlaceholder = "placeholder"
	BackendDisabled    = "disabled"
)

// NewRegistryFromConfig registers all five detectors. A detector without a
// model service uses the placeholder model when
// analysis.placeholder_models is set and is disabled otherwise.
func NewRegistryFromConfig(cfg *config.Config) (*Registry, error) {
	reg := NewRegistry()
	placeholders := cfg.Analysis.PlaceholderModels

	media := []struct {
		name       string
		svc        config.ModelServiceConfig
		trace      bool
		modalities []contentstore.Modality
	}{
		{NameVideoDeepfake, cfg.Detectors.Video, true, []contentstore.Modality{contentstore.ModalityVideo}},
		{NameAudioVoiceClone, cfg.Detectors.Audio, false, []contentstore.Modality{contentstore.ModalityAudio, contentstore.ModalityVideo}},
		{NameImageManipulation, cfg.Detectors.Image, false, []contentstore.Modality{contentstore.ModalityImage}},
	}
	for _, m := range media {
		d, err := newMediaFromConfig(m.name, m.svc, placeholders, m.modalities)
		if err != nil {
			return nil, err
		}
		if m.trace {
			d.WithTrace()
		}
		reg.RegisterDetector(d)
	}

	text, err := newTextFromConfig(cfg, placeholders)
	if err != nil {
		return nil, err
	}
	reg.RegisterDetector(text)
	reg.RegisterDetector(NewMetadataForensics())

	return reg, nil
}

func newMediaFromConfig(name string, svc config.ModelServiceConfig, placeholders bool, modalities []contentstore.Modality) (*ModelDetector, error) {
	switch {
	case svc.URL != "":
		client, err := modelclient.New(name, svc)
		if err != nil {
			return nil, fmt.Errorf("detector %s: %w", name, err)
		}
		return NewMediaDetector(name, BackendModel, client, modalities...), nil
	case placeholders:
		return NewMediaDetector(name, BackendPlaceholder, modelclient.Placeholder{}, modalities...), nil
	default:
		return NewMediaDetector(name, BackendDisabled, nil, modalities...), nil
	}
}

func newTextFromConfig(cfg *config.Config, placeholders bool) (*ModelDetector, error) {
	tc := cfg.Detectors.Text
	switch {
	case tc.Backend == "openai":
		m, err := modelclient.NewOpenAITextModel(NameTextOrigin, cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("detector %s: %w", NameTextOrigin, err)
		}
		return NewTextDetector(BackendOpenAI, m), nil
	case tc.URL != "":
		client, err := modelclient.New(NameTextOrigin, tc.Service())
		if err != nil {
			return nil, fmt.Errorf("detector %s: %w", NameTextOrigin, err)
		}
		return NewTextDetector(BackendModel, client), nil
	case placeholders:
		return NewTextDetector(BackendPlaceholder, modelclient.Placeholder{}), nil
	default:
		return NewTextDetector(BackendDisabled, nil), nil
	}
}
