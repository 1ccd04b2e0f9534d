// Package crawler provides polite web crawling and per-page signal
// extraction for answer-engine-readiness audits.
//
// # Architecture
//
// The crawler package is designed around the Spider type, which
// coordinates the crawling process. It uses a work queue to manage
// URLs to visit and respects depth limits and politeness settings.
// Every fetch is gated on the site's robots.txt rules; denied URLs are
// recorded as non-crawlable pages but never requested.
//
// Design decision: We implement our own crawler rather than using a
// third-party library because:
//  1. Each fetched page must produce a full AEO signal set (schema
//     blocks, headings, metadata) in a single parse pass
//  2. Robots denials must surface as audit findings, not silent skips
//  3. We need tight control over request timing to stay polite
//  4. Reduces external dependencies and potential security issues
//
// # Components
//
//   - Spider: The main crawler that coordinates the crawling process
//   - Parser: HTML parser that extracts signals and internal links
//   - SitemapFetcher: Downloads sitemaps so pages carry membership signals
//
// # Politeness
//
// The crawler is designed to be polite:
//   - Robots.txt rules checked before every fetch
//   - Crawl-delay honored, using the larger of the configured and
//     declared delays
//   - Respects max depth and max page settings
//   - Memory limits prevent runaway reads from large pages
//
// # Usage
//
//	spider := crawler.NewSpider(httpClient,
//		crawler.WithMaxDepth(3),
//		crawler.WithRobotsRules(rules))
//	result, err := spider.Crawl(ctx, "https://example.com")
package crawler
