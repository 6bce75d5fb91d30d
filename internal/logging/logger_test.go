// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("Timestamp = false, want true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info().Str("detector", "text-origin").Msg("test message")

	out := buf.String()
	for _, want := range []string{"test message", `"level":"info"`, `"app":"truthx"`, `"detector":"text-origin"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCtx_AddsRequestAndAnalysisIDs(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithAnalysisID(ctx, "an-1")
	Ctx(ctx).Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) {
		t.Errorf("missing request_id: %s", out)
	}
	if !strings.Contains(out, `"analysis_id":"an-1"`) {
		t.Errorf("missing analysis_id: %s", out)
	}
}

func TestContextIDs_Empty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext = %q, want empty", got)
	}
	if got := AnalysisIDFromContext(ctx); got != "" {
		t.Errorf("AnalysisIDFromContext = %q, want empty", got)
	}
	if id := GenerateRequestID(); len(id) != 36 {
		t.Errorf("GenerateRequestID length = %d, want 36", len(id))
	}
}

func TestRedactText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "len=0"},
		{"ascii", "hello", "len=5 sha256=2cf24dba"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactText(tt.input); got != tt.want {
				t.Errorf("RedactText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	secret := "the quick brown fox"
	if strings.Contains(RedactText(secret), "quick") {
		t.Error("RedactText leaked input text")
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	got := SanitizeError("open /var/tmp/truthx/abc.bin: no such file")
	if strings.Contains(got, "/var/tmp") {
		t.Errorf("SanitizeError kept path: %q", got)
	}
	if !strings.Contains(got, "[path]") {
		t.Errorf("SanitizeError = %q, want [path] marker", got)
	}

	long := SanitizeError(strings.Repeat("x", 400))
	if len(long) != 259 {
		t.Errorf("len = %d, want 259", len(long))
	}
}
