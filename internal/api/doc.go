// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package api provides the HTTP layer for truthx.

Endpoints:

  - GET /health: liveness probe. 200 {status:"ok", ffprobe, models} while
    the content store accepts uploads, 503 {status:"unavailable"} otherwise.
    ffprobe is "available", "fallback (ffmpeg)" or "unavailable".
  - POST /analyze: multipart form with one file ("file" or "video") or one
    text query ("text" or "query") and an optional "kind". Returns the
    authenticity report as the response body.
  - GET /metrics: Prometheus exposition.

Upload Handling:

The file part is streamed into the content store as it arrives. The first
bytes are sniffed with gabriel-vasile/mimetype to determine the media type;
the client's file name is never read. A Content-Length above the limit is
rejected before any byte is read, and a body that grows past the limit while
streaming is rejected by the store. In both cases no detector runs and no
content remains.

Errors:

Failures use a single envelope:

	{"success": false, "error": {"code": "CONTENT_TOO_LARGE", "message": "...", "request_id": "..."}}

Codes are INVALID_REQUEST (400), CONTENT_TOO_LARGE (413),
UNSUPPORTED_FORMAT (415), TOO_MANY_REQUESTS (429), BACKEND_UNAVAILABLE (503)
and INTERNAL_ERROR (500). Messages are fixed per code; wrapped error detail is
logged, never returned.

Usage Example:

	handler := api.NewHandler(api.Dependencies{
	    Store:      store,
	    Analyzer:   orchestrator,
	    Aggregator: scoring.New(cfg.Analysis.Weights),
	    Prober:     prober,
	    Registry:   registry,
	    Audit:      auditLogger,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(cfg.Server)))
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}

Middleware Stack (outermost first): RealIP, RequestID, Recoverer, CORS,
PrometheusMetrics, AccessLog. /analyze adds the per-IP rate limiter and
security headers.
*/
package api
