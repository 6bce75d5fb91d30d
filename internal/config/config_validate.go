// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateDetectors(); err != nil {
		return err
	}
	if err := c.validateArticles(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.RateLimitEnabled {
		if c.Server.RateLimitRequests < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1 when rate limiting is enabled")
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
		}
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS_ORIGINS entry %q must start with http:// or https://", origin)
		}
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "disk":
		if c.Storage.Dir == "" {
			return fmt.Errorf("STORAGE_DIR is required for the disk backend")
		}
	case "minio":
		m := c.Storage.Minio
		if m.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the minio backend")
		}
		if m.Bucket == "" {
			return fmt.Errorf("MINIO_BUCKET is required for the minio backend")
		}
		if m.AccessKey == "" || m.SecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be 'disk' or 'minio', got %q", c.Storage.Backend)
	}

	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_BYTES must be positive, got %d", c.Storage.MaxUploadBytes)
	}
	if c.Storage.TTL < time.Second {
		return fmt.Errorf("STORAGE_TTL must be at least 1s, got %s", c.Storage.TTL)
	}
	if c.Storage.SweepInterval <= 0 {
		return fmt.Errorf("STORAGE_SWEEP_INTERVAL must be positive, got %s", c.Storage.SweepInterval)
	}
	if c.Storage.DeleteRetries < 0 {
		return fmt.Errorf("STORAGE_DELETE_RETRIES cannot be negative")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	a := c.Analysis
	if a.RequestTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_REQUEST_TIMEOUT must be positive, got %s", a.RequestTimeout)
	}
	if a.DetectorTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_DETECTOR_TIMEOUT must be positive, got %s", a.DetectorTimeout)
	}
	if a.DetectorTimeout > a.RequestTimeout {
		return fmt.Errorf("ANALYSIS_DETECTOR_TIMEOUT (%s) cannot exceed ANALYSIS_REQUEST_TIMEOUT (%s)",
			a.DetectorTimeout, a.RequestTimeout)
	}
	if a.RequestTimeout >= c.Server.Timeout {
		return fmt.Errorf("ANALYSIS_REQUEST_TIMEOUT (%s) must be shorter than HTTP_TIMEOUT (%s)",
			a.RequestTimeout, c.Server.Timeout)
	}
	if a.MaxConcurrent < 1 {
		return fmt.Errorf("ANALYSIS_MAX_CONCURRENT must be at least 1, got %d", a.MaxConcurrent)
	}
	for name, w := range a.Weights {
		if w < 0 {
			return fmt.Errorf("ANALYSIS_WEIGHTS: weight for %s cannot be negative", name)
		}
	}
	return nil
}

func (c *Config) validateDetectors() error {
	services := map[string]ModelServiceConfig{
		"VIDEO_MODEL": c.Detectors.Video,
		"AUDIO_MODEL": c.Detectors.Audio,
		"IMAGE_MODEL": c.Detectors.Image,
		"TEXT_MODEL":  c.Detectors.Text.Service(),
	}
	for prefix, svc := range services {
		if err := validateServiceURL(prefix, svc.URL); err != nil {
			return err
		}
		if svc.RateLimit < 0 {
			return fmt.Errorf("%s_RATE_LIMIT cannot be negative", prefix)
		}
	}
	if c.OpenAI.RateLimit < 0 {
		return fmt.Errorf("OPENAI_RATE_LIMIT cannot be negative")
	}

	switch c.Detectors.Text.Backend {
	case "http":
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when TEXT_MODEL_BACKEND=openai")
		}
	default:
		return fmt.Errorf("TEXT_MODEL_BACKEND must be 'http' or 'openai', got %q", c.Detectors.Text.Backend)
	}
	return nil
}

func validateServiceURL(prefix, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s_URL is not a valid URL: %w", prefix, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s_URL must use http or https, got %q", prefix, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s_URL must include a host", prefix)
	}
	return nil
}

func (c *Config) validateArticles() error {
	if !c.Articles.Enabled {
		return nil
	}
	if c.Articles.Path == "" {
		return fmt.Errorf("ARTICLES_PATH is required when ARTICLES_ENABLED=true")
	}
	if c.Articles.TopK < 1 {
		return fmt.Errorf("ARTICLES_TOP_K must be at least 1, got %d", c.Articles.TopK)
	}
	return nil
}

func (c *Config) validateAudit() error {
	if !c.Audit.Enabled {
		return nil
	}
	switch c.Audit.Driver {
	case "duckdb", "postgres", "memory":
	default:
		return fmt.Errorf("AUDIT_DRIVER must be 'duckdb', 'postgres' or 'memory', got %q", c.Audit.Driver)
	}
	if c.Audit.Driver != "memory" && c.Audit.DSN == "" {
		return fmt.Errorf("AUDIT_DSN is required for the %s driver", c.Audit.Driver)
	}
	if c.Audit.RetentionDays < 1 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must be at least 1")
	}
	if c.Audit.BufferSize < 1 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be at least 1")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true, "off": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error, fatal, panic, off (got: %s)", c.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console (got: %s)", c.Logging.Format)
	}
	return nil
}
