// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package modelclient talks to remote detection model services.

A model service accepts either a multipart upload (field "file") or a JSON
body {"text": "..."} on POST {url} and answers with a Prediction:

	{"label": "fake", "confidence": 0.94,
	 "per_frame": [{"Real": 0.1, "Fake": 0.9}, ...],
	 "findings": [{"label": "Blending boundary", "detail": "...", "severity": "warning"}]}

Requests carry the analysis ID in X-Analysis-ID when the context has one.

Every Client owns a gobreaker circuit breaker named after its detector, so
a failing service is short-circuited instead of holding analyses until
their deadline. Breaker state is exported through the circuit_breaker_*
metrics.

OpenAITextModel classifies text origin with an OpenAI-compatible chat
completion endpoint, and Placeholder answers deterministically when no
model service is configured.
*/
package modelclient
