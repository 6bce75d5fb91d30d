// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package config loads and validates truthx configuration.

Configuration is layered with Koanf v2, later sources overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (CONFIG_PATH, ./config.yaml or /etc/truthx/config.yaml)
 3. Environment variables

Only environment variables listed in envMappings are read. Comma-separated
values are accepted for list fields (CORS_ORIGINS) and for the detector
weight map (ANALYSIS_WEIGHTS="video-deepfake=100,text-origin=60").

# Sections

  - Server: listen address, request timeout, CORS and rate limiting
  - Logging: zerolog level and format
  - Storage: ephemeral content store backend, upload ceiling and TTL
  - Analysis: orchestration timeouts, concurrency and scoring weights
  - Detectors: remote model service endpoints and outbound rate limits per detector
  - OpenAI: text-origin backend and article embeddings
  - Probe: ffprobe and ffmpeg locations and timeout
  - Articles: related-article corpus
  - Audit: analysis audit log sink

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	addr := cfg.Server.Addr()

A detector with no URL configured is reported as skipped, or served by a
placeholder model when analysis.placeholder_models is set.
*/
package config
