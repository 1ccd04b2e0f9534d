package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aeoscan/aeoscan/internal/model"
	"github.com/aeoscan/aeoscan/internal/robots"
)

// DefaultUserAgent identifies the crawler in requests and when matching
// robots.txt user-agent blocks.
const DefaultUserAgent = "aeoscan/1.0 (+https://github.com/aeoscan/aeoscan)"

// Spider crawls a site breadth-first and extracts AEO signals per page.
// It consults robots rules before every fetch and honors the crawl
// delay the site declares.
//
// Design decision: We call it "Spider" rather than "Crawler" because
// "Spider" is the traditional term and it reads better than
// crawler.NewCrawler().
type Spider struct {
	// client is the HTTP client used for all fetches.
	client *http.Client

	// rules are the parsed robots.txt rules for the target host,
	// nil when robots.txt was unavailable (crawl everything).
	rules *robots.RuleSet

	// maxDepth limits how deep to crawl from the starting URL.
	// 0 means only the starting page, 1 means one level of links, etc.
	maxDepth int

	// maxPages limits the total number of pages to crawl.
	// This prevents runaway crawling on large sites.
	maxPages int

	// delay is the configured minimum time between requests. A larger
	// robots crawl-delay takes precedence.
	delay time.Duration

	// userAgent is the User-Agent header and robots matching token.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// sitemapURLs is the set of normalized URLs found in sitemaps,
	// used to fill the SitemapListed signal.
	sitemapURLs map[string]bool

	// visited tracks URLs already processed to avoid duplicates.
	visited map[string]bool

	// mutex protects visited and the counters.
	mutex sync.Mutex

	// pageCount tracks pages crawled, blockedCount robots denials.
	pageCount    int
	blockedCount int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the starting page, 1 = starting page plus linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to crawl.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the configured delay between requests.
// The effective delay is the larger of this and the robots crawl-delay.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithSpiderUserAgent sets a custom User-Agent header.
func WithSpiderUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		s.userAgent = ua
	}
}

// WithSpiderMaxBodySize sets the maximum response body size.
func WithSpiderMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		s.maxBodySize = size
	}
}

// WithRobotsRules sets the parsed robots.txt rules consulted before
// every fetch. Without rules every URL is treated as allowed.
func WithRobotsRules(rules *robots.RuleSet) SpiderOption {
	return func(s *Spider) {
		s.rules = rules
	}
}

// WithSitemapURLs sets the URL set discovered from sitemaps so crawled
// pages carry the SitemapListed signal.
func WithSitemapURLs(urls map[string]bool) SpiderOption {
	return func(s *Spider) {
		s.sitemapURLs = urls
	}
}

// NewSpider creates a new Spider with the given HTTP client.
//
// Design decision: We require an external client because it allows the
// caller to configure timeouts and transport once, and tests can plug
// in httptest servers.
func NewSpider(client *http.Client, opts ...SpiderOption) *Spider {
	s := &Spider{
		client:      client,
		maxDepth:    3,
		maxPages:    100,
		delay:       1 * time.Second,
		userAgent:   DefaultUserAgent,
		maxBodySize: 10 * 1024 * 1024, // 10MB
		sitemapURLs: make(map[string]bool),
		visited:     make(map[string]bool),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CrawlResult is the outcome of one site crawl.
type CrawlResult struct {
	// Pages holds signals for every processed URL, including entries
	// for URLs robots rules blocked (Crawlable=false, never fetched).
	Pages []*model.PageSignals

	// Crawled is the number of pages actually fetched.
	Crawled int

	// Blocked is the number of URLs denied by robots rules.
	Blocked int

	// CrawlDelay is the effective delay in seconds that applied.
	CrawlDelay float64
}

// Crawl starts crawling from the given URL breadth-first and returns
// signals for every page it processed. Robots rules are consulted
// before every fetch; blocked URLs appear in the result as
// non-crawlable signal entries but are never requested.
func (s *Spider) Crawl(ctx context.Context, startURL string) (*CrawlResult, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}
	if start.Scheme != "http" && start.Scheme != "https" {
		start.Scheme = "https"
	}

	delay := s.effectiveDelay()
	result := &CrawlResult{
		Pages:      make([]*model.PageSignals, 0),
		CrawlDelay: delay.Seconds(),
	}

	queue := []queueItem{{url: start.String(), depth: 0}}

	for len(queue) > 0 && s.pageCount < s.maxPages {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		item := queue[0]
		queue = queue[1:]

		if s.isVisited(item.url) {
			continue
		}
		s.markVisited(item.url)

		// Robots decision gates every fetch. Denied URLs still produce
		// a signal entry so scoring can surface the crawlability issue.
		if decision := s.checkAllowance(item.url); !decision.Allowed {
			s.mutex.Lock()
			s.blockedCount++
			s.mutex.Unlock()
			result.Blocked++
			result.Pages = append(result.Pages, &model.PageSignals{
				URL:        item.url,
				Crawlable:  false,
				CrawlDelay: delay.Seconds(),
			})
			continue
		}

		signals, links, err := s.fetchPage(ctx, item.url)
		if err != nil {
			// Some pages will fail; keep crawling the rest.
			continue
		}
		signals.CrawlDelay = delay.Seconds()
		signals.SitemapListed = s.sitemapURLs[normalizeURL(item.url)]

		result.Pages = append(result.Pages, signals)
		result.Crawled++
		s.mutex.Lock()
		s.pageCount++
		s.mutex.Unlock()

		if item.depth < s.maxDepth {
			for _, link := range links {
				if !s.isVisited(link) && s.isSameHost(start.Host, link) {
					queue = append(queue, queueItem{url: link, depth: item.depth + 1})
				}
			}
		}

		// Politeness delay between requests.
		if delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return result, nil
}

// queueItem represents an item in the crawl queue.
type queueItem struct {
	url   string
	depth int
}

// checkAllowance evaluates robots rules for one URL.
func (s *Spider) checkAllowance(pageURL string) robots.Decision {
	if s.rules == nil {
		return robots.Decision{Allowed: true}
	}
	return s.rules.CheckAllowance(pageURL, s.userAgent)
}

// effectiveDelay returns the larger of the configured delay and the
// robots crawl-delay for our user agent.
func (s *Spider) effectiveDelay() time.Duration {
	delay := s.delay
	if s.rules == nil {
		return delay
	}
	if rule := s.rules.FindMatchingRule(s.userAgent); rule != nil && rule.CrawlDelay > 0 {
		robotsDelay := time.Duration(rule.CrawlDelay * float64(time.Second))
		if robotsDelay > delay {
			delay = robotsDelay
		}
	}
	return delay
}

// fetchPage fetches a single page and extracts its signals and links.
func (s *Spider) fetchPage(ctx context.Context, pageURL string) (*model.PageSignals, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, nil, err
	}

	signals := &model.PageSignals{
		URL:        pageURL,
		StatusCode: resp.StatusCode,
		Crawlable:  true,
	}

	var links []string
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		parser, err := NewParser(pageURL)
		if err == nil {
			if parsed, err := parser.Parse(strings.NewReader(string(body))); err == nil {
				status := signals.StatusCode
				signals = parsed.Signals
				signals.URL = pageURL
				signals.StatusCode = status
				signals.Crawlable = true
				links = parsed.InternalLinks
			}
		}
	}

	// A noindex can also arrive as a response header.
	if strings.Contains(strings.ToLower(resp.Header.Get("X-Robots-Tag")), "noindex") {
		signals.NoIndex = true
	}

	return signals, links, nil
}

// isVisited checks if a URL has been visited.
func (s *Spider) isVisited(pageURL string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.visited[normalizeURL(pageURL)]
}

// markVisited marks a URL as visited.
func (s *Spider) markVisited(pageURL string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited[normalizeURL(pageURL)] = true
}

// normalizeURL normalizes a URL for deduplication and sitemap
// membership lookups: fragments dropped, scheme and host lowercased,
// empty path treated as "/".
func normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// isSameHost checks if a URL stays on the crawl's host.
// Cross-host links are never followed.
func (s *Spider) isSameHost(baseHost, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, baseHost)
}

// Reset clears the spider's state, allowing it to be reused.
func (s *Spider) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited = make(map[string]bool)
	s.pageCount = 0
	s.blockedCount = 0
}

// Stats returns current crawl statistics.
func (s *Spider) Stats() SpiderStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return SpiderStats{
		PagesVisited: s.pageCount,
		PagesBlocked: s.blockedCount,
		URLsSeen:     len(s.visited),
	}
}

// SpiderStats contains crawl statistics.
type SpiderStats struct {
	// PagesVisited is the number of pages successfully crawled.
	PagesVisited int

	// PagesBlocked is the number of URLs robots rules denied.
	PagesBlocked int

	// URLsSeen is the number of unique URLs encountered.
	URLsSeen int
}
