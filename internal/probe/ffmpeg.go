// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package probe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// AudioTrackMimeType is the format ExtractAudio produces: 16 kHz mono
// 16-bit PCM WAV.
const AudioTrackMimeType = "audio/wav"

var (
	inputRe    = regexp.MustCompile(`^Input #\d+, (.+), from `)
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)
	bitrateRe  = regexp.MustCompile(`bitrate:\s*(\d+)\s*kb/s`)
	streamRe   = regexp.MustCompile(`^\s*Stream #\d+:\d+.*?: (Video|Audio|Subtitle|Data|Attachment): (.*)$`)
	sizeRe     = regexp.MustCompile(`\b(\d{2,5})x(\d{2,5})\b`)
	fpsRe      = regexp.MustCompile(`(\d+(?:\.\d+)?) fps`)
	kbpsRe     = regexp.MustCompile(`(\d+) kb/s`)
	audioRe    = regexp.MustCompile(`^([^,]+), (\d+) Hz(?:, ([^,]+))?`)
	tagRe      = regexp.MustCompile(`^\s+([A-Za-z0-9_.\-]+)\s*:\s?(.*)$`)
)

// probeFFmpeg runs "ffmpeg -i" and parses the input description it prints
// on stderr.
func (p *Prober) probeFFmpeg(ctx context.Context, path string) (*MediaMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.runStderr(ctx, p.ffmpegPath, "-hide_banner", "-i", path)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrUnavailable
		}
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	md, err := parseFFmpeg(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	if info, statErr := os.Stat(path); statErr == nil {
		md.File.SizeBytes = info.Size()
	}
	return md, nil
}

// parseFFmpeg reads ffmpeg's human-readable input description. Container
// metadata precedes the first stream; metadata under the first video
// stream is kept as stream tags, as with ffprobe.
func parseFFmpeg(out []byte) (*MediaMetadata, error) {
	md := &MediaMetadata{}
	format := make(map[string]string)
	video := make(map[string]string)
	seenInput := false

	var section map[string]string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()

		if m := inputRe.FindStringSubmatch(line); m != nil {
			if seenInput {
				break // only the first input is described
			}
			seenInput = true
			md.File.Container = m[1]
			section = format
			continue
		}
		if m := durationRe.FindStringSubmatch(line); m != nil {
			h, _ := strconv.ParseFloat(m[1], 64)
			mins, _ := strconv.ParseFloat(m[2], 64)
			secs, _ := strconv.ParseFloat(m[3], 64)
			md.File.DurationSeconds = round2(h*3600 + mins*60 + secs)
			if b := bitrateRe.FindStringSubmatch(line); b != nil {
				md.File.TotalBitrateKbps = int(parseInt64(b[1]))
			}
			continue
		}
		if m := streamRe.FindStringSubmatch(line); m != nil {
			md.File.Streams++
			section = nil
			switch m[1] {
			case "Video":
				if md.Video == nil {
					md.Video = parseVideoLine(m[2])
					section = video
				}
			case "Audio":
				if md.Audio == nil {
					md.Audio = parseAudioLine(m[2])
				}
			case "Subtitle":
				md.SubtitleStreams++
			}
			continue
		}
		if section == nil {
			continue
		}
		if m := tagRe.FindStringSubmatch(line); m != nil {
			key, value := m[1], strings.TrimSpace(m[2])
			if _, dup := section[key]; value != "" && !dup {
				section[key] = value
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !seenInput {
		return nil, errors.New("no input description in ffmpeg output")
	}

	if md.File.Container == "" {
		md.File.Container = "unknown"
	}
	md.Tags = mapTags(format, video)
	if md.Video != nil {
		md.Video.Rotation = video["rotate"]
	}
	return md, nil
}

func parseVideoLine(desc string) *VideoStream {
	codec, _, _ := strings.Cut(desc, ", ")
	codec = strings.TrimSpace(codec)
	short, _, _ := strings.Cut(codec, " ")

	v := &VideoStream{
		Codec:      firstNonEmpty(codec, "unknown"),
		CodecShort: firstNonEmpty(short, "unknown"),
	}
	if m := sizeRe.FindStringSubmatch(desc); m != nil {
		v.Width = int(parseInt64(m[1]))
		v.Height = int(parseInt64(m[2]))
	}
	if m := fpsRe.FindStringSubmatch(desc); m != nil {
		v.FPS = round2(parseFloat(m[1]))
		v.AvgFPS = v.FPS
	}
	if m := kbpsRe.FindStringSubmatch(desc); m != nil {
		v.BitrateKbps = int(parseInt64(m[1]))
	}
	return v
}

func parseAudioLine(desc string) *AudioStream {
	a := &AudioStream{}
	m := audioRe.FindStringSubmatch(desc)
	if m == nil {
		codec, _, _ := strings.Cut(desc, ", ")
		a.Codec = firstNonEmpty(strings.TrimSpace(codec), "unknown")
	} else {
		a.Codec = strings.TrimSpace(m[1])
		a.SampleRateHz = int(parseInt64(m[2]))
		a.ChannelLayout = strings.TrimSpace(m[3])
		a.Channels = layoutChannels(a.ChannelLayout)
	}
	short, _, _ := strings.Cut(a.Codec, " ")
	a.CodecShort = firstNonEmpty(short, "unknown")
	if k := kbpsRe.FindStringSubmatch(desc); k != nil {
		a.BitrateKbps = int(parseInt64(k[1]))
	}
	return a
}

func layoutChannels(layout string) int {
	base, _, _ := strings.Cut(layout, "(")
	switch base {
	case "mono":
		return 1
	case "stereo":
		return 2
	case "2.1":
		return 3
	case "quad", "4.0":
		return 4
	case "5.0":
		return 5
	case "5.1":
		return 6
	case "7.1":
		return 8
	}
	return 0
}

// AudioTrack is a soundtrack extracted to a temporary WAV file. It
// satisfies the detector content source interface.
type AudioTrack struct {
	path string
}

// NewAudioTrack wraps an existing WAV file.
func NewAudioTrack(path string) *AudioTrack {
	return &AudioTrack{path: path}
}

// Path returns the file location.
func (a *AudioTrack) Path() string { return a.path }

// Open opens the track for reading.
func (a *AudioTrack) Open(context.Context) (io.ReadCloser, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAudioExtraction, err)
	}
	return f, nil
}

// Remove deletes the track. Removing a deleted track is not an error.
func (a *AudioTrack) Remove() error {
	if err := os.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ExtractAudio converts the soundtrack of the media file at src into a
// 16 kHz mono PCM WAV file in dir (the system temp dir when empty). The
// caller must Remove the track.
func (p *Prober) ExtractAudio(ctx context.Context, src, dir string) (*AudioTrack, error) {
	f, err := os.CreateTemp(dir, "truthx-audio-*.wav")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAudioExtraction, err)
	}
	track := &AudioTrack{path: f.Name()}
	_ = f.Close()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err = p.run(ctx, p.ffmpegPath,
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", src,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-f", "wav",
		track.path,
	)
	if err != nil {
		_ = track.Remove()
		if errors.Is(err, exec.ErrNotFound) {
			p.forget(p.ffmpegPath)
		}
		return nil, fmt.Errorf("%w: %w", ErrAudioExtraction, err)
	}
	return track, nil
}
