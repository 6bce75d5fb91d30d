// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

// Package logging provides centralized zerolog-based structured logging for truthx.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("detector", "video-deepfake").Msg("Detector registered")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Content delete failed")
//
// # Configuration
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Request Context
//
// The HTTP layer stores the request ID and analysis ID on the request context.
// Ctx(ctx) returns a logger with both fields attached, so every line written
// while an analysis runs can be joined back to the request that caused it.
//
// # Privacy
//
// Submitted content never reaches the log. Text queries are summarised with
// RedactText, which records only a length and a short digest.
//
// # slog Adapter
//
// Suture requires a *slog.Logger. NewSlogLogger returns one that writes through
// the global zerolog logger.
package logging
