package rod

import (
	"context"
	"time"

	"github.com/ejankowski/crawlmark"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements crawlmark.Fetcher at compile time.
var _ crawlmark.Fetcher = (*Fetcher)(nil)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 30 * time.Second

// requestIdleWindow is how long network activity must stay quiet before a
// page counts as settled.
const requestIdleWindow = 300 * time.Millisecond

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Each fetch opens a fresh page, waits for scripts and network activity to
// settle, and closes the page. Fetcher is safe for concurrent use by
// multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout overrides the per-page render timeout.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new Fetcher backed by a managed headless Chrome
// browser. Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	manager, err := NewBrowserManager()
	if err != nil {
		return nil, crawlmark.Errorf(crawlmark.EUNAVAILABLE, "starting browser: %v", err)
	}

	f := &Fetcher{manager: manager, timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML once network
// activity has settled.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.manager.closed.Load() {
		return "", crawlmark.Errorf(crawlmark.EINVALID, "fetcher is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", crawlmark.Errorf(crawlmark.EUNAVAILABLE, "opening page: %v", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", crawlmark.Errorf(crawlmark.EUNAVAILABLE, "navigating to %s: %v", url, err)
	}

	if err := page.WaitLoad(); err != nil {
		return "", crawlmark.Errorf(crawlmark.EUNAVAILABLE, "loading %s: %v", url, err)
	}

	// Let client-side rendering finish before snapshotting the DOM.
	wait := page.WaitRequestIdle(requestIdleWindow, nil, nil, nil)
	wait()
	if err := ctx.Err(); err != nil {
		return "", crawlmark.Errorf(crawlmark.EUNAVAILABLE, "rendering %s: %v", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", crawlmark.Errorf(crawlmark.EUNAVAILABLE, "reading %s: %v", url, err)
	}

	f.manager.IncrementPageCount()
	return html, nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
