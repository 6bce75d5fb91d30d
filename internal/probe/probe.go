// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

// Package probe extracts container and stream metadata with ffprobe, falls
// back to parsing ffmpeg's input description, and extracts soundtracks for
// the voice-clone detector.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/tomtom215/truthx/internal/config"
	"github.com/tomtom215/truthx/internal/logging"
)

// Sentinel errors
var (
	// ErrUnavailable means neither ffprobe nor ffmpeg can be executed.
	ErrUnavailable = errors.New("ffprobe unavailable")
	// ErrExtraction means the extractor ran but produced no usable metadata.
	ErrExtraction = errors.New("metadata extraction failed")
	// ErrAudioExtraction means a video's soundtrack could not be extracted.
	ErrAudioExtraction = errors.New("audio extraction failed")
)

// runner executes a command and returns its stdout.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, logging.SanitizeError(stderr.String()))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// execStderrRunner executes a command and returns its stderr. A non-zero
// exit is not an error: ffmpeg -i without an output file always fails.
func execStderrRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, err
	}
	return stderr.Bytes(), nil
}

const (
	// availabilityTTL bounds how long an availability check is trusted.
	availabilityTTL = 30 * time.Second

	availabilityTimeout = 5 * time.Second
)

// Mode is how metadata is extracted, as reported by /health.
type Mode string

const (
	ModeFFprobe     Mode = "available"
	ModeFFmpeg      Mode = "fallback (ffmpeg)"
	ModeUnavailable Mode = "unavailable"
)

type availability struct {
	ok bool
	at time.Time
}

// Prober runs ffprobe, or parses ffmpeg's input description when ffprobe
// is not installed.
type Prober struct {
	path       string
	ffmpegPath string
	timeout    time.Duration
	run        runner
	runStderr  runner

	mu     sync.Mutex
	checks map[string]availability
	now    func() time.Time
}

// New creates a Prober from configuration.
func New(cfg config.ProbeConfig) *Prober {
	path := cfg.FFprobePath
	if path == "" {
		path = "ffprobe"
	}
	ffmpegPath := cfg.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Prober{
		path:       path,
		ffmpegPath: ffmpegPath,
		timeout:    timeout,
		run:        execRunner,
		runStderr:  execStderrRunner,
		checks:     make(map[string]availability),
		now:        time.Now,
	}
}

// Mode reports which extractor Probe will use.
func (p *Prober) Mode(ctx context.Context) Mode {
	switch {
	case p.executable(ctx, p.path):
		return ModeFFprobe
	case p.executable(ctx, p.ffmpegPath):
		return ModeFFmpeg
	}
	return ModeUnavailable
}

// Available reports whether metadata can be extracted at all.
func (p *Prober) Available(ctx context.Context) bool {
	return p.Mode(ctx) != ModeUnavailable
}

// executable reports whether bin runs. Results are cached for
// availabilityTTL. The check is detached from ctx, so a cancelled request
// never records the binary as missing, and the lock is not held while the
// process runs.
func (p *Prober) executable(ctx context.Context, bin string) bool {
	p.mu.Lock()
	c, ok := p.checks[bin]
	p.mu.Unlock()
	if ok && p.now().Sub(c.at) < availabilityTTL {
		return c.ok
	}

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), availabilityTimeout)
	defer cancel()
	_, err := p.run(cctx, bin, "-version")
	if err != nil {
		logging.Debug().Err(err).Str("binary", bin).Msg("availability check failed")
	}

	p.mu.Lock()
	p.checks[bin] = availability{ok: err == nil, at: p.now()}
	p.mu.Unlock()
	return err == nil
}

// forget drops a cached availability result.
func (p *Prober) forget(bin string) {
	p.mu.Lock()
	delete(p.checks, bin)
	p.mu.Unlock()
}

// Probe extracts metadata from the media file at path.
func (p *Prober) Probe(ctx context.Context, path string) (*MediaMetadata, error) {
	switch p.Mode(ctx) {
	case ModeFFprobe:
		md, err := p.probeJSON(ctx, path)
		if errors.Is(err, ErrUnavailable) {
			p.forget(p.path)
		}
		return md, err
	case ModeFFmpeg:
		md, err := p.probeFFmpeg(ctx, path)
		if errors.Is(err, ErrUnavailable) {
			p.forget(p.ffmpegPath)
		}
		return md, err
	default:
		return nil, ErrUnavailable
	}
}

func (p *Prober) probeJSON(ctx context.Context, path string) (*MediaMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.run(ctx, p.path,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrUnavailable
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrExtraction, ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	md, err := parse(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return md, nil
}
