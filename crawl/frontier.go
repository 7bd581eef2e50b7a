package crawl

import (
	"strings"
	"sync"

	"github.com/ejankowski/crawlmark/bloom"
)

// Frontier is an in-memory breadth-first crawl queue with Bloom filter
// deduplication. A URL enters the queue at most once, so a URL is never
// fetched twice even when the link graph contains cycles. Safe for
// concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []string
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewFilter(n, fpRate),
	}
}

// Push appends a URL to the queue in insertion order.
// Returns false if the URL has already been seen. URL fragments are
// stripped first - URLs differing only by fragment are duplicates.
func (f *Frontier) Push(rawURL string) bool {
	url := stripFragment(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.Test(url) {
		return false
	}
	f.seen.Add(url)
	f.queue = append(f.queue, url)
	return true
}

// PopN removes and returns up to n URLs from the front of the queue.
// Returns an empty slice if the frontier is empty.
func (f *Frontier) PopN(n int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n > len(f.queue) {
		n = len(f.queue)
	}
	if n <= 0 {
		return nil
	}
	batch := make([]string, n)
	copy(batch, f.queue[:n])
	f.queue = f.queue[n:]
	return batch
}

// Len returns the number of URLs waiting in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been queued at any point.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(stripFragment(rawURL))
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
