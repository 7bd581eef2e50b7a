package crawl

import (
	"context"
	"regexp"

	"github.com/ejankowski/crawlmark"
	"golang.org/x/sync/errgroup"
)

// Frontier sizing for discovery.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
)

// DiscoverConfig configures a breadth-first discovery run.
type DiscoverConfig struct {
	// BaseURL seeds the frontier and scopes every extracted link.
	BaseURL string

	// Patterns are the compiled pattern rules; a link matching any of
	// them (unanchored) joins the discovered set.
	Patterns []*regexp.Regexp

	// MaxDepth is the number of traversal waves.
	MaxDepth int

	// MaxConcurrent bounds the URLs fetched per wave.
	MaxConcurrent int
}

// CompilePatterns compiles pattern rules for discovery.
// Returns an EINVALID error naming the first rule that does not compile.
func CompilePatterns(rules []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(rules))
	for _, rule := range rules {
		re, err := regexp.Compile(rule)
		if err != nil {
			return nil, crawlmark.Errorf(crawlmark.EINVALID, "invalid pattern %q: %v", rule, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// Discover walks the site breadth-first from cfg.BaseURL and returns the
// URLs that matched at least one pattern rule, in insertion order.
//
// Each wave pops up to cfg.MaxConcurrent URLs from the frontier and fetches
// them concurrently under the gate; links found on those pages are pushed
// for the next wave. The frontier admits every URL at most once, so the
// traversal terminates within cfg.MaxDepth waves even on cyclic link
// graphs. A fetch or parse failure drops that branch without failing the
// run; only context cancellation aborts it.
//
// The seed URL itself is never tested against the pattern rules: matching
// applies only to links found on fetched pages. A seed that also appears as
// a link on some page is a frontier duplicate by then and stays excluded.
func Discover(
	ctx context.Context,
	fetcher crawlmark.Fetcher,
	links crawlmark.LinkExtractor,
	gate crawlmark.Gate,
	cfg DiscoverConfig,
) ([]string, error) {
	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(cfg.BaseURL)

	var discovered []string

	for wave := 0; wave < cfg.MaxDepth; wave++ {
		batch := frontier.PopN(cfg.MaxConcurrent)
		if len(batch) == 0 {
			break
		}

		// Wave barrier: wave N+1 starts only after wave N fully resolves.
		found := make([][]string, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		for i, pageURL := range batch {
			g.Go(func() error {
				if err := gate.Acquire(gctx); err != nil {
					return err
				}
				defer gate.Release()

				html, err := fetcher.Fetch(gctx, pageURL)
				if err != nil {
					return nil // dropped branch
				}
				out, err := links.ExtractLinks(html, pageURL, cfg.BaseURL)
				if err != nil {
					return nil
				}
				found[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, pageLinks := range found {
			for _, link := range pageLinks {
				if !frontier.Push(link) {
					continue
				}
				if matchesAny(link, cfg.Patterns) {
					discovered = append(discovered, link)
				}
			}
		}
	}

	return discovered, nil
}

// matchesAny reports whether the URL matches at least one pattern rule via
// an unanchored test.
func matchesAny(url string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
