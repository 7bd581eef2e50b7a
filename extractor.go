package crawlmark

// ExtractOptions carries the per-job content cleaning flags.
type ExtractOptions struct {
	// RemoveNavigation strips navigation, header, footer, menu, and
	// sidebar elements before content selection.
	RemoveNavigation bool

	// CleanFormatting strips script, style, embed, and ad/social/comment
	// elements before content selection.
	CleanFormatting bool

	// IncludeImages keeps image elements in the extracted content.
	IncludeImages bool
}

// ExtractResult holds the extracted content of an HTML page.
type ExtractResult struct {
	// Title is the page title: <title>, else the first <h1>, else
	// "Untitled".
	Title string

	// ContentHTML is the selected main content subtree as HTML.
	ContentHTML string
}

// Extractor selects the main content region of an HTML page and cleans it
// according to the options.
type Extractor interface {
	Extract(html string, opts ExtractOptions) (*ExtractResult, error)
}
