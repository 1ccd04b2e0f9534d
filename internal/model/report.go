package model

import (
	"sort"
	"time"
)

// ScanReport is the main scan result structure.
// It accumulates data as pipeline steps run and is persisted as JSON.
//
// Design decision: We use a single struct that steps mutate in sequence
// rather than having each step return its own result type. This simplifies
// serialization, database storage, and partial-result reporting when a
// scan times out or fails midway.
type ScanReport struct {
	// Domain is the audited domain (host, no scheme).
	Domain string `json:"domain"`

	// DateScanned is the timestamp when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// SiteType selects the pillar weighting profile used for scoring.
	SiteType string `json:"site_type,omitempty"`

	// === Robots / discovery ===

	// RobotsFound reports whether robots.txt was fetched successfully.
	RobotsFound bool `json:"robots_found"`

	// Sitemaps lists sitemap URLs declared in robots.txt or found at the
	// default location.
	Sitemaps []string `json:"sitemaps,omitempty"`

	// CrawlDelay is the robots crawl delay in seconds that applied to
	// this crawler, zero if none.
	CrawlDelay float64 `json:"crawl_delay,omitempty"`

	// SitemapURLCount is the number of URLs discovered via sitemaps.
	SitemapURLCount int `json:"sitemap_url_count,omitempty"`

	// === Crawl data ===

	// Pages contains the extracted signals for every crawled page.
	Pages []*PageSignals `json:"pages,omitempty"`

	// PagesCrawled is the number of pages successfully fetched.
	PagesCrawled int `json:"pages_crawled"`

	// PagesBlocked is the number of candidate URLs denied by robots.txt.
	PagesBlocked int `json:"pages_blocked"`

	// === Scoring ===

	// PageScores maps page URL to its score result.
	PageScores map[string]*ScoreResult `json:"page_scores,omitempty"`

	// SiteScore is the aggregate result across all scored pages
	// (arithmetic mean of page overall scores, same rubric metadata).
	SiteScore *ScoreResult `json:"site_score,omitempty"`

	// === Evidence ===

	// EvidenceIDs references the evidence rows captured during the scan.
	EvidenceIDs []int64 `json:"evidence_ids,omitempty"`

	// === Status ===

	// TimedOut indicates the scan was cut short by its deadline.
	TimedOut bool `json:"timed_out"`

	// Error contains the failure that stopped the scan, if any.
	// Stored as a string for JSON round-tripping.
	Error string `json:"error,omitempty"`
}

// NewScanReport creates an empty report for the given domain.
func NewScanReport(domain string) *ScanReport {
	return &ScanReport{
		Domain:      domain,
		DateScanned: time.Now().UTC(),
		PageScores:  make(map[string]*ScoreResult),
	}
}

// AllIssues collects every issue across all page scores, sorted by
// severity descending then by code for stable report output.
func (r *ScanReport) AllIssues() []Issue {
	var issues []Issue
	for _, result := range r.PageScores {
		issues = append(issues, result.Issues()...)
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity > issues[j].Severity
		}
		return issues[i].Code < issues[j].Code
	})
	return issues
}

// IssueCountsBySeverity returns how many issues were surfaced at each
// severity level across the whole scan.
func (r *ScanReport) IssueCountsBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, issue := range r.AllIssues() {
		counts[issue.Severity]++
	}
	return counts
}

// SortedPageURLs returns the scored page URLs in ascending order.
// Used by report writers for deterministic output.
func (r *ScanReport) SortedPageURLs() []string {
	urls := make([]string, 0, len(r.PageScores))
	for u := range r.PageScores {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}
