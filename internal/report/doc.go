// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package report assembles the authenticity report returned to callers.

Build is a pure function: it performs no I/O and reads no clock, so the
same inputs always encode to the same bytes. The analysis time and any
request-scoped values arrive through Options.

The JSON field names form the contract with the presentation layer and
must stay stable:

	score, risk_level, status_label, confidence, summary, anomalies,
	insights, fingerprint, drift_timeline, detector_results, models_used,
	related_articles, kind, analyzed_at

The drift timeline is derived only from a trace a detector actually
produced. Without a trace it is empty; no estimate is synthesised.
*/
package report
