package mock

import (
	"context"

	"github.com/ejankowski/crawlmark"
)

var _ crawlmark.Gate = (*Gate)(nil)

// Gate is a mock implementation of crawlmark.Gate.
// A zero Gate admits everything immediately.
type Gate struct {
	AcquireFn func(ctx context.Context) error
	ReleaseFn func()
}

func (g *Gate) Acquire(ctx context.Context) error {
	if g.AcquireFn == nil {
		return nil
	}
	return g.AcquireFn(ctx)
}

func (g *Gate) Release() {
	if g.ReleaseFn != nil {
		g.ReleaseFn()
	}
}
