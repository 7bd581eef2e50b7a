package crawlmark

import "context"

// Fetcher retrieves rendered HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered
// content; a fetch waits for network activity to settle before returning so
// client-rendered content is captured.
type Fetcher interface {
	// Fetch navigates to the URL and returns the rendered HTML.
	// Navigation errors, timeouts, and render failures surface as
	// EUNAVAILABLE errors; the caller decides whether the URL is dropped
	// (discovery) or recorded as an error result (extraction).
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases fetcher resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
