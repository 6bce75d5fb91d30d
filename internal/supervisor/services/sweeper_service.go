// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/truthx/internal/logging"
)

// DefaultSweepInterval is used when the configured interval is not positive.
const DefaultSweepInterval = time.Minute

// ContentSweeper is satisfied by *contentstore.Store.
type ContentSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// ContentSweeperService removes expired and orphaned content on a fixed
// interval. It covers content whose request never reached cleanup, such as
// uploads interrupted by a crash.
type ContentSweeperService struct {
	sweeper  ContentSweeper
	interval time.Duration
	name     string
	log      zerolog.Logger
}

// NewContentSweeperService creates a sweeper service.
func NewContentSweeperService(sweeper ContentSweeper, interval time.Duration) *ContentSweeperService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &ContentSweeperService{
		sweeper:  sweeper,
		interval: interval,
		name:     "content-sweeper",
		log:      logging.WithComponent("content-sweeper"),
	}
}

// Serve implements suture.Service. It sweeps once at start so leftovers from
// a previous process go away before the first tick. Sweep errors are logged
// and do not stop the service.
func (s *ContentSweeperService) Serve(ctx context.Context) error {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ContentSweeperService) sweep(ctx context.Context) {
	removed, err := s.sweeper.Sweep(ctx)
	if err != nil && ctx.Err() == nil {
		s.log.Warn().Err(err).Int("removed", removed).Msg("Content sweep incomplete")
		return
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("Swept expired content")
	}
}

// String names the service in suture events.
func (s *ContentSweeperService) String() string {
	return s.name
}
