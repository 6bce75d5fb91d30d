// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package report

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tomtom215/truthx/internal/detection"
	"github.com/tomtom215/truthx/internal/probe"
)

// Section is one group of the metadata fingerprint.
type Section struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Field is one fingerprint entry.
type Field struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Value      string `json:"value"`
	Suspicious bool   `json:"suspicious"`
	Reason     string `json:"reason,omitempty"`
}

// Fingerprint groups probed metadata into File, Video, Audio, Device,
// Location and Tags sections. Sections without fields are left out except
// Location, whose absence is itself evidence.
func Fingerprint(md *probe.MediaMetadata) []Section {
	var sections []Section
	add := func(name string, fields []Field) {
		if len(fields) > 0 {
			sections = append(sections, Section{Name: name, Fields: fields})
		}
	}

	add("File", fileFields(md))
	add("Video", videoFields(md.Video))
	add("Audio", audioFields(md.Audio))
	add("Device", deviceFields(md.Tags))
	add("Location", locationFields(md.Tags))
	add("Tags", tagFields(md.Tags))
	return sections
}

type fieldList []Field

func (l *fieldList) add(key, label, value string) *Field {
	if value == "" || value == "0" {
		return nil
	}
	*l = append(*l, Field{Key: key, Label: label, Value: value})
	return &(*l)[len(*l)-1]
}

func (f *Field) flag(reason string) {
	if f == nil {
		return
	}
	f.Suspicious = true
	f.Reason = reason
}

func fileFields(md *probe.MediaMetadata) []Field {
	var l fieldList
	fi := md.File
	l.add("container", "Container", fi.Container)
	if fi.DurationSeconds > 0 {
		l.add("duration", "Duration", formatDuration(fi.DurationSeconds))
	}
	if fi.SizeBytes > 0 {
		l.add("size", "Size", formatBytes(fi.SizeBytes))
	}
	bitrate := l.add("bitrate", "Total bitrate", kbps(fi.TotalBitrateKbps))
	if detection.IsLowBitrate(md) {
		bitrate.flag(fmt.Sprintf("Implausibly low for %dx%d", md.Video.Width, md.Video.Height))
	}
	l.add("streams", "Streams", strconv.Itoa(fi.Streams))
	return l
}

func videoFields(v *probe.VideoStream) []Field {
	if v == nil {
		return nil
	}
	var l fieldList
	codec := l.add("codec", "Codec", firstNonEmpty(v.Codec, v.CodecShort))
	if c := strings.ToLower(v.CodecShort); c != "" && !slices.Contains(detection.CommonCodecs, c) {
		codec.flag("Unusual codec for camera output")
	}
	l.add("profile", "Profile", v.Profile)
	if v.Width > 0 && v.Height > 0 {
		l.add("resolution", "Resolution", fmt.Sprintf("%dx%d", v.Width, v.Height))
	}
	if v.FPS > 0 {
		l.add("fps", "Frame rate", strconv.FormatFloat(v.FPS, 'f', -1, 64))
	}
	l.add("bitrate", "Bitrate", kbps(v.BitrateKbps))
	l.add("pixel_format", "Pixel format", v.PixelFormat)
	l.add("color_space", "Color space", v.ColorSpace)
	l.add("frames", "Frames", strconv.Itoa(v.TotalFrames))
	l.add("rotation", "Rotation", v.Rotation)
	return l
}

func audioFields(a *probe.AudioStream) []Field {
	if a == nil {
		return nil
	}
	var l fieldList
	l.add("codec", "Codec", firstNonEmpty(a.Codec, a.CodecShort))
	if a.SampleRateHz > 0 {
		l.add("sample_rate", "Sample rate", fmt.Sprintf("%d Hz", a.SampleRateHz))
	}
	l.add("channels", "Channels", strconv.Itoa(a.Channels))
	l.add("channel_layout", "Layout", a.ChannelLayout)
	l.add("bitrate", "Bitrate", kbps(a.BitrateKbps))
	l.add("language", "Language", a.Language)
	return l
}

func deviceFields(t probe.Tags) []Field {
	var l fieldList
	l.add("manufacturer", "Manufacturer", t.Manufacturer)
	l.add("model", "Model", t.CameraDevice)
	l.add("software", "Software", t.SoftwareVersion)
	return l
}

func locationFields(t probe.Tags) []Field {
	if t.GPSLocation != "" {
		return []Field{{Key: "gps", Label: "GPS", Value: t.GPSLocation}}
	}
	return []Field{{Key: "gps", Label: "GPS", Value: "absent", Suspicious: true, Reason: "No GPS location recorded"}}
}

func tagFields(t probe.Tags) []Field {
	var l fieldList
	l.add("creation_time", "Created", t.CreationTime)

	if enc := l.add("encoder", "Encoder", t.Encoder); enc != nil {
		reason := "Encoder tag present"
		if slices.ContainsFunc(detection.AIToolNames, func(n string) bool { return strings.Contains(strings.ToLower(t.Encoder), n) }) {
			reason = "Names an AI generation tool"
		}
		enc.flag(reason)
	}

	l.add("title", "Title", t.Title)
	if c := l.add("comment", "Comment", t.Comment); c != nil {
		if slices.ContainsFunc(detection.AIToolNames, func(n string) bool { return strings.Contains(strings.ToLower(t.Comment), n) }) {
			c.flag("Names an AI generation tool")
		}
	}
	l.add("major_brand", "Major brand", t.MajorBrand)
	return l
}

func kbps(v int) string {
	if v <= 0 {
		return ""
	}
	return fmt.Sprintf("%d kbps", v)
}

func formatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
