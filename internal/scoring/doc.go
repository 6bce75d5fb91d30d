// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package scoring combines detector results into one authenticity score.

# Algorithm

The score starts at 100. Every successful result whose label indicates
manipulation subtracts confidence x weight, where the weight is configured
per detector and defaults to 100 points. The total is clamped to [0,100]
and rounded half away from zero.

	score >= 75   low risk
	45..74        medium risk
	< 45          high risk

When no detector produced a successful result there is no evidence to
score. The aggregate then carries a nil Score and RiskUnknown; absence of
detection is never reported as authenticity.

# Anomalies

Anomalies come from three places: every flag in a successful result, one
entry per manipulation verdict, and consistency rules evaluated over the
probed metadata. They are deduplicated by source and label and ordered
most severe first, so the most confident manipulation verdict leads even
though the score itself is a weighted sum.
*/
package scoring
