// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/truthx/internal/analysis"
	"github.com/tomtom215/truthx/internal/api"
	"github.com/tomtom215/truthx/internal/articles"
	"github.com/tomtom215/truthx/internal/audit"
	"github.com/tomtom215/truthx/internal/config"
	"github.com/tomtom215/truthx/internal/contentstore"
	"github.com/tomtom215/truthx/internal/detection"
	"github.com/tomtom215/truthx/internal/logging"
	"github.com/tomtom215/truthx/internal/metrics"
	"github.com/tomtom215/truthx/internal/probe"
	"github.com/tomtom215/truthx/internal/scoring"
	"github.com/tomtom215/truthx/internal/supervisor"
	"github.com/tomtom215/truthx/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// shutdownGrace is added to the analysis deadline so in-flight requests can
// finish and release their content.
const shutdownGrace = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("truthx stopped")
	}
}

//nolint:gocyclo // sequential setup steps
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("storage", cfg.Storage.Backend).
		Bool("placeholder_models", cfg.Analysis.PlaceholderModels).
		Msg("Starting truthx")

	store, err := contentstore.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Err(err).Msg("Error closing content store")
		}
	}()

	prober := probe.New(cfg.Probe)
	switch mode := prober.Mode(ctx); mode {
	case probe.ModeFFmpeg:
		logging.Warn().Str("ffprobe", cfg.Probe.FFprobePath).Str("ffmpeg", cfg.Probe.FFmpegPath).
			Msg("ffprobe not found; falling back to ffmpeg for media metadata")
	case probe.ModeUnavailable:
		logging.Warn().Str("ffprobe", cfg.Probe.FFprobePath).Str("ffmpeg", cfg.Probe.FFmpegPath).
			Msg("Neither ffprobe nor ffmpeg found; video and audio analysis will be unavailable")
	}

	registry, err := detection.NewRegistryFromConfig(cfg)
	if err != nil {
		return err
	}
	logging.Info().Interface("models", registry.Backends()).Msg("Detectors registered")

	var searcher analysis.ArticleSearcher
	if cfg.Articles.Enabled {
		index, err := loadArticles(ctx, cfg)
		if err != nil {
			return err
		}
		searcher = index
	}

	orchestrator := analysis.New(store, registry, prober, searcher, analysis.OptionsFromConfig(cfg))

	var auditLogger *audit.Logger
	if cfg.Audit.Enabled {
		auditStore, err := audit.OpenStore(ctx, cfg.Audit)
		if err != nil {
			return err
		}
		if c, ok := auditStore.(io.Closer); ok {
			defer c.Close()
		}
		auditLogger = audit.NewLogger(auditStore, audit.ConfigFromApp(cfg.Audit))
		// Flush before the store closes; defers run last-in first-out.
		defer auditLogger.Close()
	}

	deps := api.Dependencies{
		Store:      store,
		Analyzer:   orchestrator,
		Aggregator: scoring.New(cfg.Analysis.Weights),
		Prober:     prober,
		Registry:   registry,
	}
	if auditLogger != nil {
		deps.Audit = auditLogger
	}
	handler := api.NewHandler(deps)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(cfg.Server)))

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Analysis.RequestTimeout + shutdownGrace,
	})
	if err != nil {
		return err
	}
	tree.AddDataService(services.NewContentSweeperService(store, cfg.Storage.SweepInterval))
	if auditLogger != nil {
		tree.AddDataService(services.NewAuditRetentionService(auditLogger))
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Analysis.RequestTimeout+shutdownGrace))

	logging.Info().Str("addr", srv.Addr).Msg("Listening")
	err = tree.Serve(ctx)

	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("truthx shut down")
	return nil
}

// loadArticles builds the related-article index, preferring OpenAI
// embeddings when an API key is configured.
func loadArticles(ctx context.Context, cfg *config.Config) (*articles.Index, error) {
	var preferred articles.Embedder
	if e, err := articles.NewOpenAIEmbedder(cfg.OpenAI); err == nil {
		preferred = e
	}
	return articles.Load(ctx, cfg.Articles, preferred)
}
