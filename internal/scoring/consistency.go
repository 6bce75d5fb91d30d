// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package scoring

import (
	"strings"

	"github.com/tomtom215/truthx/internal/detection"
	"github.com/tomtom215/truthx/internal/probe"
)

// consistencyAnomalies cross-checks metadata fields against each other.
func consistencyAnomalies(source string, md *probe.MediaMetadata) []Anomaly {
	var out []Anomaly
	tags := md.Tags

	if tags.CameraDevice != "" && tags.GPSLocation == "" {
		out = append(out, Anomaly{
			Label:    "Missing location",
			Detail:   "Recording device " + tags.CameraDevice + " recorded no GPS location",
			Severity: detection.SeverityWarning,
			Source:   source,
		})
	}

	if tags.Encoder != "" && tags.SoftwareVersion != "" {
		enc, sw := strings.ToLower(tags.Encoder), strings.ToLower(tags.SoftwareVersion)
		if !strings.Contains(enc, sw) && !strings.Contains(sw, enc) {
			out = append(out, Anomaly{
				Label:    "Encoder/software mismatch",
				Detail:   "Encoder '" + tags.Encoder + "' differs from recording software '" + tags.SoftwareVersion + "'",
				Severity: detection.SeverityWarning,
				Source:   source,
			})
		}
	}

	if tags.Manufacturer != "" && tags.CameraDevice == "" {
		out = append(out, Anomaly{
			Label:    "Incomplete device tags",
			Detail:   "Manufacturer " + tags.Manufacturer + " present without a device model",
			Severity: detection.SeverityInfo,
			Source:   source,
		})
	}

	return out
}
