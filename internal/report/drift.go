// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package report

import (
	"fmt"
	"math"

	"github.com/tomtom215/truthx/internal/detection"
)

// MaxDriftPoints bounds the drift timeline.
const MaxDriftPoints = 20

// DriftPoint is the mean authenticity of one segment, 0-100.
type DriftPoint struct {
	Offset string `json:"t"`
	Value  int    `json:"v"`
	Source string `json:"source"`
}

func driftFromResults(results []detection.Result, forensics *detection.Result) []DriftPoint {
	var duration float64
	if forensics != nil && forensics.Findings.Metadata != nil {
		duration = forensics.Findings.Metadata.File.DurationSeconds
	}
	for _, r := range results {
		if r.Status == detection.StatusOK && len(r.Findings.Trace) > 0 {
			return DriftTimeline(r.Findings.Trace, duration, r.Detector)
		}
	}
	return nil
}

// DriftTimeline chunks a per-frame real-probability trace into at most
// MaxDriftPoints segment means. Offsets are seconds when duration is known
// and frame indexes otherwise.
func DriftTimeline(trace []float64, duration float64, source string) []DriftPoint {
	n := len(trace)
	if n == 0 {
		return nil
	}
	chunk := (n + MaxDriftPoints - 1) / MaxDriftPoints

	points := make([]DriftPoint, 0, (n+chunk-1)/chunk)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		var sum float64
		for _, v := range trace[start:end] {
			sum += v
		}
		mean := sum / float64(end-start)

		offset := fmt.Sprintf("f%d", start)
		if duration > 0 {
			offset = fmt.Sprintf("%ds", int(float64(start)/float64(n)*duration))
		}
		points = append(points, DriftPoint{
			Offset: offset,
			Value:  int(math.Round(mean * 100)),
			Source: source,
		})
	}
	return points
}
