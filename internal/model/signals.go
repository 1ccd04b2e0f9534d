package model

import "strings"

// PageSignals is the structured bag of extracted signals for one page.
// It is produced by the crawler's extraction pass and consumed by the
// scoring engine, which treats it as read-only input.
//
// Design decision: We keep all signals in one flat-ish struct rather than
// passing the raw HTML to the scoring engine because:
// 1. It makes the engine a pure function of (signals, rubric)
// 2. Extraction runs once per page regardless of how many checks read it
// 3. Missing fields degrade to worst-case check scores instead of errors
type PageSignals struct {
	// URL is the full URL of the page.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Title is the page title extracted from the <title> tag.
	Title string `json:"title,omitempty"`

	// MetaDescription is the content of <meta name="description">.
	MetaDescription string `json:"meta_description,omitempty"`

	// MetaRobots is the content of <meta name="robots">.
	// Used to detect noindex/nofollow directives.
	MetaRobots string `json:"meta_robots,omitempty"`

	// Canonical is the href of <link rel="canonical">.
	Canonical string `json:"canonical,omitempty"`

	// OpenGraph contains og:* meta properties keyed by property name.
	OpenGraph map[string]string `json:"open_graph,omitempty"`

	// TwitterTags contains twitter:* meta names keyed by name.
	TwitterTags map[string]string `json:"twitter_tags,omitempty"`

	// Headings contains heading text grouped by level.
	Headings HeadingSet `json:"headings"`

	// SchemaBlocks contains all JSON-LD blocks found on the page.
	SchemaBlocks []SchemaBlock `json:"schema_blocks,omitempty"`

	// WordCount is the visible-text word count (scripts/styles excluded).
	WordCount int `json:"word_count"`

	// Lists counts <ul> and <ol> elements, a proxy for answer-friendly
	// structure.
	Lists ListCounts `json:"lists"`

	// Images summarizes image alt-text coverage.
	Images ImageCounts `json:"images"`

	// Crawlable reports whether robots.txt allowed fetching this URL.
	Crawlable bool `json:"crawlable"`

	// NoIndex reports whether a noindex directive was present in either
	// the meta robots tag or the X-Robots-Tag header.
	NoIndex bool `json:"noindex"`

	// SitemapListed reports whether the URL appeared in a discovered sitemap.
	SitemapListed bool `json:"sitemap_listed"`

	// CrawlDelay is the robots.txt crawl delay in seconds that applied to
	// this fetch. Zero means none was declared.
	CrawlDelay float64 `json:"crawl_delay,omitempty"`
}

// HeadingSet groups heading text by level. Levels beyond H3 are not
// extracted; rubric checks only reason about the top three.
type HeadingSet struct {
	H1 []string `json:"h1,omitempty"`
	H2 []string `json:"h2,omitempty"`
	H3 []string `json:"h3,omitempty"`
}

// ListCounts counts list elements on a page.
type ListCounts struct {
	Unordered int `json:"unordered"`
	Ordered   int `json:"ordered"`
}

// ImageCounts summarizes image alt-text coverage.
type ImageCounts struct {
	Total      int `json:"total"`
	WithAlt    int `json:"with_alt"`
	WithoutAlt int `json:"without_alt"`
}

// SchemaBlock represents one JSON-LD script block extracted from a page.
type SchemaBlock struct {
	// Raw is the script body exactly as found.
	Raw string `json:"raw"`

	// Types contains the @type values found in the block, flattened.
	// Empty when the block did not parse.
	Types []string `json:"types,omitempty"`

	// Parseable reports whether the block was valid JSON.
	Parseable bool `json:"parseable"`
}

// HasSchemaType reports whether any parsed schema block declares the given
// @type. Matching is case-insensitive on the type name.
func (p *PageSignals) HasSchemaType(name string) bool {
	for _, block := range p.SchemaBlocks {
		for _, t := range block.Types {
			if strings.EqualFold(t, name) {
				return true
			}
		}
	}
	return false
}

// ParseableSchemaCount returns how many schema blocks parsed successfully.
func (p *PageSignals) ParseableSchemaCount() int {
	n := 0
	for _, block := range p.SchemaBlocks {
		if block.Parseable {
			n++
		}
	}
	return n
}
