// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

// Package audit records finished analyses for later review.
//
// An entry holds the verdict of one analysis: kind, score, risk level,
// summary, models used, per-detector status and timing. Submitted files,
// file names and text queries are never recorded.
//
// # Architecture
//
//	Logger.LogAnalysis() -> Entry Buffer (chan) -> Async Writer -> Store
//	                             |                      |
//	                        Non-blocking          Background goroutine
//
// When the buffer is full the entry is dropped and
// truthx_audit_events_dropped_total is incremented; the HTTP response is
// never delayed by audit persistence.
//
// # Storage Backends
//
//   - MemoryStore: bounded ring for development and tests
//   - SQLStore with driver "duckdb": embedded file (default truthx-audit.duckdb)
//   - SQLStore with driver "postgres": shared PostgreSQL via lib/pq
//
// OpenStore selects the backend from config.AuditConfig.
//
// # Retention
//
// RunRetention deletes entries older than RetentionDays on every
// CleanupInterval tick. It runs as a supervised service.
//
// # Usage Example
//
//	store, err := audit.OpenStore(ctx, cfg.Audit)
//	if err != nil {
//	    return err
//	}
//	logger := audit.NewLogger(store, audit.ConfigFromApp(cfg.Audit))
//	defer logger.Close()
//
//	logger.LogAnalysis(ctx, rep)
package audit
