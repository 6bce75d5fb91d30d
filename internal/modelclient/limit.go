// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package modelclient

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"
)

// limiter throttles outbound calls to one model service. A nil limiter
// never waits.
type limiter struct {
	name string
	rl   *rate.Limiter
}

// newLimiter allows perSecond requests with a burst of one second's worth.
func newLimiter(name string, perSecond float64) *limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(math.Ceil(perSecond))
	return &limiter{name: name, rl: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// wait blocks until a request may be sent. When the caller's deadline would
// pass first it fails immediately with ErrUnavailable instead of sleeping.
func (l *limiter) wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.rl.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s rate limit exceeded", ErrUnavailable, l.name)
	}
	return nil
}
