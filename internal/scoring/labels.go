// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package scoring

import "strings"

var manipulationLabels = map[string]bool{
	"fake":         true,
	"ai-generated": true,
	"synthetic":    true,
	"manipulated":  true,
	"deepfake":     true,
	"spoof":        true,
}

// IsManipulationLabel reports whether a detector label claims manipulation.
// Underscores and spaces are accepted in place of hyphens.
func IsManipulationLabel(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.NewReplacer("_", "-", " ", "-").Replace(l)
	return manipulationLabels[l]
}
