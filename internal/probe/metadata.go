// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package probe

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// MediaMetadata is the probed description of one media file. The original
// file name is never recorded.
type MediaMetadata struct {
	File            FileInfo     `json:"file"`
	Video           *VideoStream `json:"video,omitempty"`
	Audio           *AudioStream `json:"audio,omitempty"`
	Tags            Tags         `json:"tags"`
	SubtitleStreams int          `json:"subtitle_streams,omitempty"`
}

// HasAudio reports whether an audio stream was found.
func (m *MediaMetadata) HasAudio() bool { return m != nil && m.Audio != nil }

// FileInfo describes the container.
type FileInfo struct {
	SizeBytes        int64   `json:"size_bytes"`
	Container        string  `json:"container"`
	DurationSeconds  float64 `json:"duration_seconds"`
	TotalBitrateKbps int     `json:"total_bitrate_kbps"`
	Streams          int     `json:"streams"`
}

// VideoStream describes the first video stream.
type VideoStream struct {
	Codec       string  `json:"codec"`
	CodecShort  string  `json:"codec_short"`
	Profile     string  `json:"profile,omitempty"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FPS         float64 `json:"fps"`
	AvgFPS      float64 `json:"avg_fps"`
	BitrateKbps int     `json:"bitrate_kbps,omitempty"`
	PixelFormat string  `json:"pixel_format,omitempty"`
	ColorSpace  string  `json:"color_space,omitempty"`
	TotalFrames int     `json:"total_frames,omitempty"`
	Rotation    string  `json:"rotation,omitempty"`
}

// AudioStream describes the first audio stream.
type AudioStream struct {
	Codec         string `json:"codec"`
	CodecShort    string `json:"codec_short"`
	SampleRateHz  int    `json:"sample_rate_hz"`
	Channels      int    `json:"channels"`
	ChannelLayout string `json:"channel_layout,omitempty"`
	BitrateKbps   int    `json:"bitrate_kbps,omitempty"`
	Language      string `json:"language,omitempty"`
}

// Tags holds the normalised container and video stream tags.
type Tags struct {
	CreationTime    string `json:"creation_time,omitempty"`
	Encoder         string `json:"encoder,omitempty"`
	CameraDevice    string `json:"camera_device,omitempty"`
	Manufacturer    string `json:"manufacturer,omitempty"`
	GPSLocation     string `json:"gps_location,omitempty"`
	Title           string `json:"title,omitempty"`
	Comment         string `json:"comment,omitempty"`
	MajorBrand      string `json:"major_brand,omitempty"`
	SoftwareVersion string `json:"software_version,omitempty"`
}

// Empty reports whether no tag was recovered.
func (t Tags) Empty() bool { return t == Tags{} }

// tagCandidates lists raw tag keys per normalised tag; the first non-empty wins.
var tagCandidates = []struct {
	set  func(*Tags, string)
	keys []string
}{
	{func(t *Tags, v string) { t.CreationTime = v }, []string{"creation_time", "date", "DATE"}},
	{func(t *Tags, v string) { t.Encoder = v }, []string{"encoder", "Encoder", "writing_library", "handler_name"}},
	{func(t *Tags, v string) { t.CameraDevice = v }, []string{"com.apple.quicktime.model", "model", "camera", "com.android.model"}},
	{func(t *Tags, v string) { t.Manufacturer = v }, []string{"com.apple.quicktime.make", "make", "manufacturer"}},
	{func(t *Tags, v string) { t.GPSLocation = v }, []string{"com.apple.quicktime.location.ISO6709", "location"}},
	{func(t *Tags, v string) { t.Title = v }, []string{"title"}},
	{func(t *Tags, v string) { t.Comment = v }, []string{"comment"}},
	{func(t *Tags, v string) { t.MajorBrand = v }, []string{"major_brand"}},
	{func(t *Tags, v string) { t.SoftwareVersion = v }, []string{"com.apple.quicktime.software", "software"}},
}

// ffprobe -print_format json output. Most numbers arrive as strings.
type rawOutput struct {
	Streams []rawStream `json:"streams"`
	Format  rawFormat   `json:"format"`
}

type rawFormat struct {
	FormatName     string            `json:"format_name"`
	FormatLongName string            `json:"format_long_name"`
	Size           string            `json:"size"`
	Duration       string            `json:"duration"`
	BitRate        string            `json:"bit_rate"`
	NbStreams      int               `json:"nb_streams"`
	Tags           map[string]string `json:"tags"`
}

type rawStream struct {
	CodecType     string            `json:"codec_type"`
	CodecName     string            `json:"codec_name"`
	CodecLongName string            `json:"codec_long_name"`
	Profile       string            `json:"profile"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	RFrameRate    string            `json:"r_frame_rate"`
	AvgFrameRate  string            `json:"avg_frame_rate"`
	BitRate       string            `json:"bit_rate"`
	PixFmt        string            `json:"pix_fmt"`
	ColorSpace    string            `json:"color_space"`
	NbFrames      string            `json:"nb_frames"`
	SampleRate    string            `json:"sample_rate"`
	Channels      int               `json:"channels"`
	ChannelLayout string            `json:"channel_layout"`
	Tags          map[string]string `json:"tags"`
}

func parse(out []byte) (*MediaMetadata, error) {
	var raw rawOutput
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, err
	}
	if len(raw.Streams) == 0 && raw.Format.FormatName == "" {
		return nil, errors.New("no streams or format reported")
	}

	md := &MediaMetadata{
		File: FileInfo{
			SizeBytes:        parseInt64(raw.Format.Size),
			Container:        firstNonEmpty(raw.Format.FormatLongName, raw.Format.FormatName, "unknown"),
			DurationSeconds:  round2(parseFloat(raw.Format.Duration)),
			TotalBitrateKbps: kbps(raw.Format.BitRate),
			Streams:          raw.Format.NbStreams,
		},
	}

	var videoTags map[string]string
	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			if md.Video != nil {
				continue
			}
			videoTags = s.Tags
			md.Video = &VideoStream{
				Codec:       firstNonEmpty(s.CodecLongName, s.CodecName, "unknown"),
				CodecShort:  firstNonEmpty(s.CodecName, "unknown"),
				Profile:     s.Profile,
				Width:       s.Width,
				Height:      s.Height,
				FPS:         parseRate(s.RFrameRate),
				AvgFPS:      parseRate(s.AvgFrameRate),
				BitrateKbps: kbps(s.BitRate),
				PixelFormat: s.PixFmt,
				ColorSpace:  s.ColorSpace,
				TotalFrames: int(parseInt64(s.NbFrames)),
				Rotation:    s.Tags["rotate"],
			}
		case "audio":
			if md.Audio != nil {
				continue
			}
			md.Audio = &AudioStream{
				Codec:         firstNonEmpty(s.CodecLongName, s.CodecName, "unknown"),
				CodecShort:    firstNonEmpty(s.CodecName, "unknown"),
				SampleRateHz:  int(parseInt64(s.SampleRate)),
				Channels:      s.Channels,
				ChannelLayout: s.ChannelLayout,
				BitrateKbps:   kbps(s.BitRate),
				Language:      s.Tags["language"],
			}
		case "subtitle":
			md.SubtitleStreams++
		}
	}

	md.Tags = mapTags(raw.Format.Tags, videoTags)
	return md, nil
}

// mapTags merges format tags with video stream tags (stream wins) and
// normalises them.
func mapTags(format, video map[string]string) Tags {
	all := make(map[string]string, len(format)+len(video))
	for k, v := range format {
		all[k] = v
	}
	for k, v := range video {
		all[k] = v
	}

	var t Tags
	for _, c := range tagCandidates {
		for _, key := range c.keys {
			if v := strings.TrimSpace(all[key]); v != "" {
				c.set(&t, v)
				break
			}
		}
	}
	return t
}

func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return round2(parseFloat(s))
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return round2(n / d)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func kbps(bitsPerSecond string) int {
	return int(math.Round(parseFloat(bitsPerSecond) / 1000))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
