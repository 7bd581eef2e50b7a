package crawlmark

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms clean HTML (e.g. from an Extractor) into
	// Markdown with ATX-style headings and fenced code blocks.
	Convert(html string) (string, error)
}
