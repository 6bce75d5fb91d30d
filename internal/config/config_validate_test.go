// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "bad cors origin",
			mutate:  func(c *Config) { c.Server.CORSOrigins = []string{"localhost:3000"} },
			wantErr: "CORS_ORIGINS",
		},
		{
			name:   "wildcard cors origin",
			mutate: func(c *Config) { c.Server.CORSOrigins = []string{"*"} },
		},
		{
			name:    "unknown storage backend",
			mutate:  func(c *Config) { c.Storage.Backend = "s3" },
			wantErr: "STORAGE_BACKEND",
		},
		{
			name:    "minio without endpoint",
			mutate:  func(c *Config) { c.Storage.Backend = "minio" },
			wantErr: "MINIO_ENDPOINT",
		},
		{
			name: "minio complete",
			mutate: func(c *Config) {
				c.Storage.Backend = "minio"
				c.Storage.Minio = MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "x"}
			},
		},
		{
			name:    "zero upload limit",
			mutate:  func(c *Config) { c.Storage.MaxUploadBytes = 0 },
			wantErr: "STORAGE_MAX_UPLOAD_BYTES",
		},
		{
			name:    "detector timeout exceeds request timeout",
			mutate:  func(c *Config) { c.Analysis.DetectorTimeout = 3 * time.Minute },
			wantErr: "ANALYSIS_DETECTOR_TIMEOUT",
		},
		{
			name:    "request timeout not below server timeout",
			mutate:  func(c *Config) { c.Analysis.RequestTimeout = c.Server.Timeout },
			wantErr: "HTTP_TIMEOUT",
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.Analysis.Weights = map[string]float64{"text-origin": -1} },
			wantErr: "ANALYSIS_WEIGHTS",
		},
		{
			name:    "model url without scheme",
			mutate:  func(c *Config) { c.Detectors.Video.URL = "models:9000" },
			wantErr: "VIDEO_MODEL_URL",
		},
		{
			name:    "openai text backend without key",
			mutate:  func(c *Config) { c.Detectors.Text.Backend = "openai" },
			wantErr: "OPENAI_API_KEY",
		},
		{
			name:    "articles enabled without path",
			mutate:  func(c *Config) { c.Articles.Enabled = true },
			wantErr: "ARTICLES_PATH",
		},
		{
			name: "audit postgres without dsn",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.Driver = "postgres"
				c.Audit.DSN = ""
			},
			wantErr: "AUDIT_DSN",
		},
		{
			name: "audit memory",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.Driver = "memory"
				c.Audit.DSN = ""
			},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8000}
	if got := s.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q", got)
	}
}
