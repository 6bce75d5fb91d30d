// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package detection

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/tomtom215/truthx/internal/contentstore"
	"github.com/tomtom215/truthx/internal/probe"
)

// Metadata-forensics labels.
const (
	LabelConsistent   = "consistent"
	LabelInconsistent = "inconsistent"
	LabelManipulated  = "manipulated"
)

// Encoder tags left behind by common transcoders.
var ReencodeEncoders = []string{"lavf", "handbrake", "obs", "x264", "x265"}

// AI generation and face-swap tools that sign their output.
var AIToolNames = []string{"deepfake", "faceswap", "synthesia", "d-id", "heygen"}

// Codecs cameras, phones and browsers produce. Anything else is unusual.
var CommonCodecs = []string{
	"h264", "hevc", "h265", "vp9", "vp8", "av1", "mpeg4",
	"mjpeg", "png", "webp", "gif", "bmp", "tiff",
}

const (
	// LowBitrateWidth and LowBitrateKbps define a full-HD frame carried at
	// a bitrate too low for camera output.
	LowBitrateWidth = 1920
	LowBitrateKbps  = 2000

	consistentConfidence  = 0.5
	manipulatedConfidence = 0.9
)

// MetadataForensics applies static rules to probed metadata. It makes no
// external call.
type MetadataForensics struct{}

// NewMetadataForensics creates the metadata-forensics detector.
func NewMetadataForensics() *MetadataForensics { return &MetadataForensics{} }

func (*MetadataForensics) Name() string { return NameMetadataForensics }

func (*MetadataForensics) Modalities() []contentstore.Modality {
	return []contentstore.Modality{contentstore.ModalityVideo, contentstore.ModalityAudio, contentstore.ModalityImage}
}

// Analyze evaluates the rules over in.Metadata.
func (m *MetadataForensics) Analyze(ctx context.Context, in Input) Result {
	if err := ctx.Err(); err != nil {
		return Failed(NameMetadataForensics, "analysis canceled")
	}
	if in.Metadata == nil {
		return Skipped(NameMetadataForensics, "no media metadata")
	}

	flags := EvaluateMetadata(in.Metadata)
	label, confidence := classify(flags)
	return OK(NameMetadataForensics, label, confidence, Findings{Flags: flags, Metadata: in.Metadata})
}

// EvaluateMetadata returns the flags raised by the metadata rules, in rule
// order.
func EvaluateMetadata(md *probe.MediaMetadata) []Flag {
	var flags []Flag
	tags := md.Tags
	encoder := strings.ToLower(tags.Encoder)

	if containsAny(encoder, ReencodeEncoders) != "" {
		flags = append(flags, Flag{
			Label:    "Re-encoded",
			Detail:   "Encoder: " + tags.Encoder,
			Severity: SeverityWarning,
		})
	}

	if md.Video != nil {
		codec := strings.ToLower(md.Video.CodecShort)
		if codec != "" && !slices.Contains(CommonCodecs, codec) {
			detail := md.Video.Codec
			if detail == "" {
				detail = codec
			}
			flags = append(flags, Flag{Label: "Unusual codec", Detail: detail, Severity: SeverityInfo})
		}
	}

	for _, field := range []string{encoder, strings.ToLower(tags.Comment)} {
		if tool := containsAny(field, AIToolNames); tool != "" {
			flags = append(flags, Flag{
				Label:    "AI tool detected",
				Detail:   fmt.Sprintf("Metadata: '%s'", tool),
				Severity: SeverityDanger,
			})
		}
	}

	if tags.Empty() {
		flags = append(flags, Flag{Label: "Stripped metadata", Detail: "No tags found", Severity: SeverityWarning})
	}

	if IsLowBitrate(md) {
		flags = append(flags, Flag{
			Label:    "Low bitrate",
			Detail:   fmt.Sprintf("%d kbps at %dx%d suggests a re-encode", md.File.TotalBitrateKbps, md.Video.Width, md.Video.Height),
			Severity: SeverityWarning,
		})
	}

	if tags.CameraDevice != "" && tags.GPSLocation == "" {
		flags = append(flags, Flag{
			Label:    "Missing location",
			Detail:   "Recording device " + tags.CameraDevice + " recorded no GPS location",
			Severity: SeverityWarning,
		})
	}

	return flags
}

// IsLowBitrate reports a full-HD video carried below LowBitrateKbps.
func IsLowBitrate(md *probe.MediaMetadata) bool {
	if md == nil || md.Video == nil {
		return false
	}
	kbps := md.File.TotalBitrateKbps
	return md.Video.Width >= LowBitrateWidth && kbps > 0 && kbps < LowBitrateKbps
}

// NamedAITool returns the first AI tool named in the encoder or comment
// tags, or "".
func NamedAITool(tags probe.Tags) string {
	if tool := containsAny(strings.ToLower(tags.Encoder), AIToolNames); tool != "" {
		return tool
	}
	return containsAny(strings.ToLower(tags.Comment), AIToolNames)
}

// classify derives the label from the flags. Each warning adds confidence
// that the metadata is inconsistent.
func classify(flags []Flag) (string, float64) {
	warnings := 0
	for _, f := range flags {
		switch f.Severity {
		case SeverityDanger:
			return LabelManipulated, manipulatedConfidence
		case SeverityWarning:
			warnings++
		}
	}
	if warnings == 0 {
		return LabelConsistent, consistentConfidence
	}
	return LabelInconsistent, math.Min(0.9, consistentConfidence+0.1*float64(warnings))
}

func containsAny(s string, needles []string) string {
	if s == "" {
		return ""
	}
	for _, n := range needles {
		if strings.Contains(s, n) {
			return n
		}
	}
	return ""
}
