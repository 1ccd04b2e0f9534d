package crawler

import (
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/aeoscan/aeoscan/internal/model"
)

// Parser extracts AEO signals from HTML content.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
//  4. Standard library extension, well-maintained
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// ParseResult contains everything extracted from one HTML page:
// the scoring signals plus the link sets the spider needs.
type ParseResult struct {
	// Signals is the extracted signal bag for scoring.
	Signals *model.PageSignals

	// Links contains all discovered URLs (href attributes), resolved.
	Links []string

	// InternalLinks are links on the same host, the crawl frontier.
	InternalLinks []string
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse parses HTML content and extracts signals and links in one pass.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Signals: &model.PageSignals{
			URL:         p.baseURL.String(),
			OpenGraph:   make(map[string]string),
			TwitterTags: make(map[string]string),
		},
		Links:         make([]string, 0),
		InternalLinks: make([]string, 0),
	}

	// Collect visible text for the word count. Script, style, and
	// noscript content is not visible and would inflate the count.
	var textContent strings.Builder

	var walk func(n *html.Node, skipText bool)
	walk = func(n *html.Node, skipText bool) {
		switch n.Type {
		case html.ElementNode:
			p.processElement(n, result)
			if n.Data == "script" || n.Data == "style" || n.Data == "noscript" {
				skipText = true
			}
		case html.TextNode:
			if !skipText {
				textContent.WriteString(n.Data)
				textContent.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skipText)
		}
	}

	walk(doc, false)

	result.Signals.WordCount = len(strings.Fields(textContent.String()))
	result.Signals.NoIndex = strings.Contains(strings.ToLower(result.Signals.MetaRobots), "noindex")

	return result, nil
}

// processElement handles HTML element nodes.
func (p *Parser) processElement(n *html.Node, result *ParseResult) {
	signals := result.Signals

	switch n.Data {
	case "title":
		if signals.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			signals.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "meta":
		p.processMeta(n, signals)

	case "link":
		if getAttr(n, "rel") == "canonical" {
			if href := getAttr(n, "href"); href != "" {
				signals.Canonical = p.resolveURL(href)
			}
		}

	case "h1":
		signals.Headings.H1 = append(signals.Headings.H1, nodeText(n))
	case "h2":
		signals.Headings.H2 = append(signals.Headings.H2, nodeText(n))
	case "h3":
		signals.Headings.H3 = append(signals.Headings.H3, nodeText(n))

	case "script":
		if strings.EqualFold(getAttr(n, "type"), "application/ld+json") {
			signals.SchemaBlocks = append(signals.SchemaBlocks, parseSchemaBlock(nodeText(n)))
		}

	case "a":
		if href := getAttr(n, "href"); href != "" {
			resolved := p.resolveURL(href)
			if resolved != "" {
				result.Links = append(result.Links, resolved)
				if p.isInternal(resolved) {
					result.InternalLinks = append(result.InternalLinks, resolved)
				}
			}
		}

	case "ul":
		signals.Lists.Unordered++
	case "ol":
		signals.Lists.Ordered++

	case "img":
		signals.Images.Total++
		if strings.TrimSpace(getAttr(n, "alt")) != "" {
			signals.Images.WithAlt++
		} else {
			signals.Images.WithoutAlt++
		}
	}
}

// processMeta routes one meta tag into the right signal field.
func (p *Parser) processMeta(n *html.Node, signals *model.PageSignals) {
	content := getAttr(n, "content")
	if content == "" {
		return
	}

	if name := strings.ToLower(getAttr(n, "name")); name != "" {
		switch {
		case name == "description":
			signals.MetaDescription = content
		case name == "robots":
			signals.MetaRobots = content
		case strings.HasPrefix(name, "twitter:"):
			signals.TwitterTags[name] = content
		}
		return
	}

	// Open Graph uses property= instead of name=.
	if property := strings.ToLower(getAttr(n, "property")); strings.HasPrefix(property, "og:") {
		signals.OpenGraph[property] = content
	}
}

// parseSchemaBlock parses one JSON-LD script body into a SchemaBlock,
// collecting every @type it declares. Blocks that fail to parse keep
// their raw text and report Parseable=false.
func parseSchemaBlock(raw string) model.SchemaBlock {
	block := model.SchemaBlock{Raw: raw}

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return block
	}

	block.Parseable = true
	block.Types = collectSchemaTypes(data, nil)
	return block
}

// collectSchemaTypes walks parsed JSON-LD and gathers @type values,
// descending into top-level arrays and @graph containers.
func collectSchemaTypes(data any, types []string) []string {
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			types = collectSchemaTypes(item, types)
		}
	case map[string]any:
		switch t := v["@type"].(type) {
		case string:
			types = append(types, t)
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					types = append(types, s)
				}
			}
		}
		if graph, ok := v["@graph"]; ok {
			types = collectSchemaTypes(graph, types)
		}
	}
	return types
}

// nodeText returns the concatenated text content of a node's subtree.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// resolveURL resolves a relative URL against the base URL.
// Non-navigational schemes resolve to empty.
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		href == "#" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return p.baseURL.ResolveReference(u).String()
}

// isInternal reports whether a resolved URL stays on the base host.
func (p *Parser) isInternal(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Host, p.baseURL.Host)
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
