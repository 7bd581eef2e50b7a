package crawlmark

import "context"

// Gate bounds the number of simultaneous in-flight fetches and spaces out
// request dispatch by the job's inter-request delay. Failures are never
// retried here; they propagate to the caller.
type Gate interface {
	// Acquire blocks until a fetch slot is free and the delay since the
	// previous dispatch has elapsed. Returns an error only if the context
	// is canceled.
	Acquire(ctx context.Context) error

	// Release frees the slot taken by Acquire.
	Release()
}
