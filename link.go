package crawlmark

// LinkExtractor resolves anchor hrefs in an HTML document to absolute URLs.
// No network access; pure parse and resolve.
type LinkExtractor interface {
	// ExtractLinks parses html and returns the unique absolute URLs
	// resolved from every anchor's href against originURL. Only URLs
	// whose resolved form starts with scopeURL (same-site scoping to the
	// job's base URL) are retained, in document order with fragments
	// stripped.
	ExtractLinks(html, originURL, scopeURL string) ([]string, error)
}
