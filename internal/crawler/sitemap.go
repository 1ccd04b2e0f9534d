package crawler

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxSitemapFetches bounds how many sitemap documents one discovery
// will download. Index files can nest deeply on large sites.
const maxSitemapFetches = 20

// sitemapURLSet represents a <urlset> sitemap document.
type sitemapURLSet struct {
	XMLName xml.Name      `xml:"urlset"`
	URLs    []sitemapItem `xml:"url"`
}

// sitemapItem is a single <url> entry.
type sitemapItem struct {
	Loc string `xml:"loc"`
}

// sitemapIndex represents a <sitemapindex> document pointing at
// further sitemap files.
type sitemapIndex struct {
	XMLName  xml.Name      `xml:"sitemapindex"`
	Sitemaps []sitemapItem `xml:"sitemap"`
}

// SitemapFetcher downloads and parses sitemaps for one site.
type SitemapFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// SitemapOption configures a SitemapFetcher.
type SitemapOption func(*SitemapFetcher)

// WithSitemapUserAgent sets a custom User-Agent header.
func WithSitemapUserAgent(ua string) SitemapOption {
	return func(f *SitemapFetcher) {
		f.userAgent = ua
	}
}

// NewSitemapFetcher creates a new SitemapFetcher with the given HTTP client.
func NewSitemapFetcher(client *http.Client, opts ...SitemapOption) *SitemapFetcher {
	f := &SitemapFetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: 10 * 1024 * 1024, // 10MB
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Discover fetches the given sitemap URLs, following index files
// breadth-first, and returns the set of page URLs they list. Keys are
// normalized the same way the spider normalizes URLs, so lookups from
// crawled pages match. When no sitemap URLs are given the site's
// conventional /sitemap.xml location is tried.
func (f *SitemapFetcher) Discover(ctx context.Context, siteURL string, sitemapURLs []string) (map[string]bool, error) {
	pages := make(map[string]bool)

	queue := sitemapURLs
	if len(queue) == 0 {
		base, err := url.Parse(siteURL)
		if err != nil {
			return nil, fmt.Errorf("invalid site URL: %w", err)
		}
		queue = []string{base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}
	}

	seen := make(map[string]bool)
	fetches := 0

	for len(queue) > 0 && fetches < maxSitemapFetches {
		select {
		case <-ctx.Done():
			return pages, ctx.Err()
		default:
		}

		target := queue[0]
		queue = queue[1:]

		if seen[target] {
			continue
		}
		seen[target] = true
		fetches++

		body, err := f.fetch(ctx, target)
		if err != nil {
			// Missing or broken sitemaps are not fatal to a scan.
			continue
		}

		urls, children := parseSitemap(body)
		for _, u := range urls {
			pages[normalizeURL(u)] = true
		}
		queue = append(queue, children...)
	}

	return pages, nil
}

// fetch downloads a single sitemap document.
func (f *SitemapFetcher) fetch(ctx context.Context, sitemapURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap fetch returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
}

// parseSitemap parses one sitemap document, returning the page URLs it
// lists and any child sitemap URLs from an index file. A document is
// tried as a <urlset> first, then as a <sitemapindex>.
func parseSitemap(data []byte) (pageURLs, childSitemaps []string) {
	var urlSet sitemapURLSet
	if err := xml.Unmarshal(data, &urlSet); err == nil && len(urlSet.URLs) > 0 {
		for _, item := range urlSet.URLs {
			if loc := strings.TrimSpace(item.Loc); loc != "" {
				pageURLs = append(pageURLs, loc)
			}
		}
		return pageURLs, nil
	}

	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err == nil {
		for _, item := range index.Sitemaps {
			if loc := strings.TrimSpace(item.Loc); loc != "" {
				childSitemaps = append(childSitemaps, loc)
			}
		}
	}

	return nil, childSitemaps
}

