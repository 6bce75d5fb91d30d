// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in defaults from defaultConfig()
//  2. Config File: optional YAML file (CONFIG_PATH, ./config.yaml, /etc/truthx/config.yaml)
//  3. Environment Variables: override any mapped setting
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Storage   StorageConfig   `koanf:"storage"`
	Analysis  AnalysisConfig  `koanf:"analysis"`
	Detectors DetectorsConfig `koanf:"detectors"`
	OpenAI    OpenAIConfig    `koanf:"openai"`
	Probe     ProbeConfig     `koanf:"probe"`
	Articles  ArticlesConfig  `koanf:"articles"`
	Audit     AuditConfig     `koanf:"audit"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
//   - CORS_ORIGINS: comma-separated list
//   - RATE_LIMIT_ENABLED, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"` // read/write timeout; must exceed analysis.request_timeout

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitEnabled  bool          `koanf:"rate_limit_enabled"`
	RateLimitRequests int           `koanf:"rate_limit_requests"` // per client IP per window, /analyze only
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StorageConfig configures the ephemeral content store.
//
// Uploaded bytes live in Dir (disk backend) or in an S3-compatible bucket
// (minio backend). The index lives in BadgerDB and is in-memory unless
// IndexDir is set.
type StorageConfig struct {
	Backend        string        `koanf:"backend"` // disk or minio
	Dir            string        `koanf:"dir"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes"`
	TTL            time.Duration `koanf:"ttl"`
	SweepInterval  time.Duration `koanf:"sweep_interval"`
	DeleteRetries  int           `koanf:"delete_retries"`
	IndexDir       string        `koanf:"index_dir"`
	Minio          MinioConfig   `koanf:"minio"`
}

// MinioConfig holds S3-compatible object storage settings.
type MinioConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// AnalysisConfig configures the orchestrator and score aggregation.
type AnalysisConfig struct {
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	DetectorTimeout   time.Duration `koanf:"detector_timeout"`
	MaxConcurrent     int           `koanf:"max_concurrent"`
	PlaceholderModels bool          `koanf:"placeholder_models"`

	// Weights maps detector name to penalty points per unit of confidence.
	// Detectors without an entry weigh 100.
	Weights map[string]float64 `koanf:"weights"`
}

// DetectorsConfig holds the model service endpoint for each detector.
type DetectorsConfig struct {
	Video ModelServiceConfig `koanf:"video"`
	Audio ModelServiceConfig `koanf:"audio"`
	Image ModelServiceConfig `koanf:"image"`
	Text  TextDetectorConfig `koanf:"text"`
}

// ModelServiceConfig describes one external model service.
// An empty URL means no model is deployed for the detector.
type ModelServiceConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit caps outbound requests per second; 0 means unlimited.
	RateLimit float64 `koanf:"rate_limit"`
}

// TextDetectorConfig selects the text-origin backend.
type TextDetectorConfig struct {
	Backend   string        `koanf:"backend"` // http or openai
	URL       string        `koanf:"url"`
	APIKey    string        `koanf:"api_key"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"`
}

// OpenAIConfig holds settings for OpenAI-compatible chat and embedding APIs.
type OpenAIConfig struct {
	APIKey         string `koanf:"api_key"`
	BaseURL        string `koanf:"base_url"`
	Model          string `koanf:"model"`
	EmbeddingModel string `koanf:"embedding_model"`

	// RateLimit caps chat completion requests per second; 0 means unlimited.
	RateLimit float64 `koanf:"rate_limit"`
}

// ProbeConfig configures media metadata extraction. FFmpegPath is used
// when ffprobe is missing and for soundtrack extraction. Soundtracks are
// written to ScratchDir, or the system temp dir when it is empty.
type ProbeConfig struct {
	FFprobePath string        `koanf:"ffprobe_path"`
	FFmpegPath  string        `koanf:"ffmpeg_path"`
	ScratchDir  string        `koanf:"scratch_dir"`
	Timeout     time.Duration `koanf:"timeout"`
}

// ArticlesConfig configures the related-article lookup for text queries.
type ArticlesConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Path      string        `koanf:"path"`
	TopK      int           `koanf:"top_k"`
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// AuditConfig configures the analysis log. Only scores and summaries are
// recorded; submitted content never is.
type AuditConfig struct {
	Enabled       bool   `koanf:"enabled"`
	Driver        string `koanf:"driver"` // duckdb, postgres or memory
	DSN           string `koanf:"dsn"`
	RetentionDays int    `koanf:"retention_days"`
	BufferSize    int    `koanf:"buffer_size"`
}

// Load loads configuration using Koanf v2.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Service returns the HTTP model service settings of the text detector.
func (t TextDetectorConfig) Service() ModelServiceConfig {
	return ModelServiceConfig{URL: t.URL, APIKey: t.APIKey, Timeout: t.Timeout, RateLimit: t.RateLimit}
}
