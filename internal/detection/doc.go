// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package detection provides the detector adapters that examine submitted
content for signs of manipulation.

# Overview

Every adapter implements Detector and turns one input into exactly one
Result. Expected faults never escape as errors or panics: an unsupported
format, an unavailable model service, malformed model output or an open
circuit all become a Result with StatusFailed and a short reason.

# Detectors

  - video-deepfake: remote model over the video bytes, per-frame trace
  - audio-voiceclone: remote model over audio, or the audio track of a video
  - image-manipulation: remote model over the image bytes
  - text-origin: remote model or OpenAI-compatible chat completion
  - metadata-forensics: local rules over probed container metadata

When no model service is configured a media or text adapter either answers
through the placeholder model, which flags its result, or reports
StatusSkipped.

# Registry

The Registry holds the adapters by name and is shared by the orchestrator
and the health endpoint:

	reg := detection.NewRegistry()
	reg.RegisterDetector(detection.NewMetadataForensics())
	for _, d := range reg.ForModality(contentstore.ModalityVideo) {
	    result := d.Analyze(ctx, input)
	}
*/
package detection
