// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package main is the entry point for the truthx server.

truthx accepts a video, audio clip, image or text query, runs the matching
authenticity detectors concurrently, and returns a single report with a 1-10
authenticity score, a risk level and per-detector findings. Uploaded content
is kept only for the duration of one analysis.

# Process Tree

	truthx
	├── data-layer
	│   ├── content-sweeper   (expired and orphaned content)
	│   └── audit-retention   (if AUDIT_ENABLED)
	└── api-layer
	    └── http-server       (/health, /analyze, /metrics)

Initialization order:

 1. Configuration: Koanf v2 defaults, optional YAML file, environment
 2. Logging: zerolog, JSON or console
 3. Content store: disk or MinIO blobs, in-memory or Badger index
 4. Detectors: model services, OpenAI text model or placeholders
 5. Related articles (optional)
 6. Audit log (optional): memory, DuckDB or PostgreSQL
 7. Supervisor tree, blocking until SIGINT or SIGTERM

# Configuration

Every key can be set in config.yaml or as an environment variable with dots
replaced by underscores:

	HTTP_PORT=8000
	STORAGE_BACKEND=disk            # or minio
	STORAGE_MAX_UPLOAD_BYTES=524288000
	ANALYSIS_PLACEHOLDER_MODELS=true
	DETECTORS_VIDEO_URL=http://models:9000/video
	OPENAI_API_KEY=...
	ARTICLES_ENABLED=true
	ARTICLES_PATH=/data/articles.json
	AUDIT_DRIVER=duckdb
	AUDIT_DSN=/data/truthx-audit.duckdb

# Signal Handling

On SIGINT or SIGTERM the HTTP server stops accepting connections and waits
for in-flight analyses, the maintenance services stop, buffered audit entries
are flushed, and the content store is closed.

# Example Usage

	ANALYSIS_PLACEHOLDER_MODELS=true ./truthx
	curl -F file=@clip.mp4 http://localhost:8000/analyze
	curl -F text="Scientists confirm the moon is hollow" http://localhost:8000/analyze
*/
package main
