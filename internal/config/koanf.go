// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/truthx/config.yaml",
	"/etc/truthx/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultMaxUploadBytes is the upload ceiling (500 MiB).
const DefaultMaxUploadBytes int64 = 500 << 20

// defaultConfig returns a Config with all defaults applied.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8000,
			Timeout:           5 * time.Minute,
			CORSOrigins:       []string{"http://localhost:3000", "http://127.0.0.1:3000"},
			RateLimitEnabled:  true,
			RateLimitRequests: 30,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Storage: StorageConfig{
			Backend:        "disk",
			Dir:            filepath.Join(os.TempDir(), "truthx"),
			MaxUploadBytes: DefaultMaxUploadBytes,
			TTL:            15 * time.Minute,
			SweepInterval:  time.Minute,
			DeleteRetries:  3,
			IndexDir:       "", // in-memory
			Minio: MinioConfig{
				Bucket: "truthx-ephemeral",
				Region: "us-east-1",
			},
		},
		Analysis: AnalysisConfig{
			RequestTimeout:    2 * time.Minute,
			DetectorTimeout:   90 * time.Second,
			MaxConcurrent:     8,
			PlaceholderModels: false,
			Weights:           map[string]float64{},
		},
		Detectors: DetectorsConfig{
			Video: ModelServiceConfig{Timeout: 90 * time.Second},
			Audio: ModelServiceConfig{Timeout: 60 * time.Second},
			Image: ModelServiceConfig{Timeout: 30 * time.Second},
			Text:  TextDetectorConfig{Backend: "http", Timeout: 20 * time.Second},
		},
		OpenAI: OpenAIConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
		},
		Probe: ProbeConfig{
			FFprobePath: "ffprobe",
			FFmpegPath:  "ffmpeg",
			Timeout:     30 * time.Second,
		},
		Articles: ArticlesConfig{
			Enabled:   false,
			TopK:      3,
			CacheSize: 256,
			CacheTTL:  time.Hour,
		},
		Audit: AuditConfig{
			Enabled:       false,
			Driver:        "duckdb",
			DSN:           "truthx-audit.duckdb",
			RetentionDays: 30,
			BufferSize:    256,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config file (optional)
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// STORAGE_MAX_UPLOAD_BYTES -> storage.max_upload_bytes
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processWeightField(k); err != nil {
		return nil, fmt.Errorf("failed to process analysis weights: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices.
// YAML-sourced values are already slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := splitList(strVal)
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// processWeightField parses ANALYSIS_WEIGHTS="video-deepfake=100,text-origin=60"
// into the analysis.weights map.
func processWeightField(k *koanf.Koanf) error {
	const path = "analysis.weights"
	strVal, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	weights := make(map[string]interface{})
	for _, pair := range splitList(strVal) {
		name, raw, found := strings.Cut(pair, "=")
		if !found {
			return fmt.Errorf("weight %q is not name=value", pair)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("weight for %s: %w", name, err)
		}
		weights[strings.TrimSpace(name)] = w
	}
	return k.Set(path, weights)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored so unrelated environment never leaks into config.
var envMappings = map[string]string{
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_enabled":  "server.rate_limit_enabled",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"storage_backend":          "storage.backend",
	"storage_dir":              "storage.dir",
	"storage_max_upload_bytes": "storage.max_upload_bytes",
	"storage_ttl":              "storage.ttl",
	"storage_sweep_interval":   "storage.sweep_interval",
	"storage_delete_retries":   "storage.delete_retries",
	"storage_index_dir":        "storage.index_dir",
	"minio_endpoint":           "storage.minio.endpoint",
	"minio_access_key":         "storage.minio.access_key",
	"minio_secret_key":         "storage.minio.secret_key",
	"minio_bucket":             "storage.minio.bucket",
	"minio_region":             "storage.minio.region",
	"minio_use_ssl":            "storage.minio.use_ssl",

	"analysis_request_timeout":    "analysis.request_timeout",
	"analysis_detector_timeout":   "analysis.detector_timeout",
	"analysis_max_concurrent":     "analysis.max_concurrent",
	"analysis_placeholder_models": "analysis.placeholder_models",
	"analysis_weights":            "analysis.weights",

	"video_model_url":        "detectors.video.url",
	"video_model_api_key":    "detectors.video.api_key",
	"video_model_timeout":    "detectors.video.timeout",
	"video_model_rate_limit": "detectors.video.rate_limit",
	"audio_model_url":        "detectors.audio.url",
	"audio_model_api_key":    "detectors.audio.api_key",
	"audio_model_timeout":    "detectors.audio.timeout",
	"audio_model_rate_limit": "detectors.audio.rate_limit",
	"image_model_url":        "detectors.image.url",
	"image_model_api_key":    "detectors.image.api_key",
	"image_model_timeout":    "detectors.image.timeout",
	"image_model_rate_limit": "detectors.image.rate_limit",
	"text_model_backend":     "detectors.text.backend",
	"text_model_url":         "detectors.text.url",
	"text_model_api_key":     "detectors.text.api_key",
	"text_model_timeout":     "detectors.text.timeout",
	"text_model_rate_limit":  "detectors.text.rate_limit",

	"openai_api_key":         "openai.api_key",
	"openai_base_url":        "openai.base_url",
	"openai_model":           "openai.model",
	"openai_embedding_model": "openai.embedding_model",
	"openai_rate_limit":      "openai.rate_limit",

	"ffprobe_path":      "probe.ffprobe_path",
	"ffmpeg_path":       "probe.ffmpeg_path",
	"probe_scratch_dir": "probe.scratch_dir",
	"probe_timeout":     "probe.timeout",

	"articles_enabled":    "articles.enabled",
	"articles_path":       "articles.path",
	"articles_top_k":      "articles.top_k",
	"articles_cache_size": "articles.cache_size",
	"articles_cache_ttl":  "articles.cache_ttl",

	"audit_enabled":        "audit.enabled",
	"audit_driver":         "audit.driver",
	"audit_dsn":            "audit.dsn",
	"audit_retention_days": "audit.retention_days",
	"audit_buffer_size":    "audit.buffer_size",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
//	HTTP_PORT       -> server.port
//	VIDEO_MODEL_URL -> detectors.video.url
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
