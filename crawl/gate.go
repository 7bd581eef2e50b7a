package crawl

import (
	"context"
	"time"

	"github.com/ejankowski/crawlmark"
	"golang.org/x/time/rate"
)

// Compile-time interface verification.
var _ crawlmark.Gate = (*Gate)(nil)

// Gate bounds concurrent fetches with a semaphore and spaces out dispatch
// with a token bucket. Each Acquire waits for a free slot, then for the
// inter-request delay since the previous dispatch. Safe for concurrent use.
type Gate struct {
	sem     chan struct{}
	limiter *rate.Limiter
}

// NewGate creates a Gate admitting at most maxConcurrent simultaneous
// holders, with at least delay between consecutive dispatches.
// A non-positive delay disables spacing.
func NewGate(maxConcurrent int, delay time.Duration) *Gate {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Gate{
		sem:     make(chan struct{}, maxConcurrent),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Acquire blocks until a slot is free and the dispatch delay has elapsed.
// Returns an error only when the context is canceled.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := g.limiter.Wait(ctx); err != nil {
		<-g.sem
		return err
	}
	return nil
}

// Release frees the slot taken by Acquire.
func (g *Gate) Release() {
	<-g.sem
}
