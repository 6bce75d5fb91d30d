// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package supervisor runs the long-lived parts of truthx under a suture v4
tree.

# Layout

	truthx
	├── data-layer
	│   ├── ContentSweeperService   (every storage.sweep_interval)
	│   └── AuditRetentionService   (if audit.enabled)
	└── api-layer
	    └── HTTPServerService

A crashed service is restarted with backoff. Failures are counted per layer,
so a sweeper that cannot reach its blob backend does not restart the HTTP
server.

# Logging

Supervisor events go through sutureslog to an slog.Logger. In production
that logger is backed by zerolog via logging.NewSlogLogger, so restarts and
backoff appear in the same JSON stream as request logs.

# Usage Example

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewContentSweeperService(store, cfg.Storage.SweepInterval))
	tree.AddAPIService(services.NewHTTPServerService(srv, 30*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

After Serve returns, UnstoppedServiceReport names any service that ignored
cancellation past the shutdown timeout.
*/
package supervisor
