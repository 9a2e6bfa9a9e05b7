// Package ratelimit bounds outbound calls to the market-data provider.
// A single Limiter instance is shared by the scanner and every tracker so
// that the whole process stays inside the provider's request quota.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter admits at most maxCalls acquisitions per period. It is a token
// bucket sized to the full quota: up to maxCalls calls may proceed
// immediately, after which callers block until tokens refill at
// maxCalls/period. It is safe for concurrent use and never errors on its
// own; Acquire only fails when the caller's context is done.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter permitting maxCalls per period.
func New(maxCalls int, period time.Duration) (*Limiter, error) {
	if maxCalls <= 0 {
		return nil, fmt.Errorf("ratelimit: maxCalls must be positive, got %d", maxCalls)
	}
	if period <= 0 {
		return nil, fmt.Errorf("ratelimit: period must be positive, got %s", period)
	}
	perSecond := float64(maxCalls) / period.Seconds()
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), maxCalls),
	}, nil
}

// Acquire blocks until a call slot is available or ctx is done. Callers may
// block indefinitely under sustained overload; the limiter's accounting stays
// consistent regardless of how many goroutines are waiting.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
