package model

import "time"

// ScanSummary is a condensed view of a ScanReport for report output.
// It flattens the hierarchical score data into the fields writers need
// most often: the overall score, pillar scores, and issue counts.
//
// Design decision: We keep the summary as a separate type rather than
// adding presentation fields to ScanReport because writers want
// pre-aggregated counts while the report stores per-page detail. The
// summary is derived on demand and never persisted.
type ScanSummary struct {
	// Domain is the audited domain.
	Domain string `json:"domain"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// SiteType is the weighting profile the scan was scored with.
	SiteType string `json:"site_type,omitempty"`

	// PagesCrawled is the number of pages successfully fetched.
	PagesCrawled int `json:"pages_crawled"`

	// PagesBlocked is the number of URLs denied by robots.txt.
	PagesBlocked int `json:"pages_blocked"`

	// RobotsFound reports whether robots.txt was fetched successfully.
	RobotsFound bool `json:"robots_found"`

	// SitemapURLCount is the number of URLs discovered via sitemaps.
	SitemapURLCount int `json:"sitemap_url_count"`

	// OverallScore is the aggregate 0-10 site score.
	OverallScore float64 `json:"overall_score"`

	// Capped reports whether a severity cap lowered the overall score.
	Capped bool `json:"capped"`

	// RubricVersion is the rubric version the scan was scored with.
	RubricVersion string `json:"rubric_version,omitempty"`

	// PillarScores maps pillar id to its 0-100 aggregate score.
	PillarScores map[string]float64 `json:"pillar_scores,omitempty"`

	// Severity counts across all pages.
	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`

	// Issues contains every issue across all pages, sorted by severity
	// descending then by code.
	Issues []Issue `json:"issues,omitempty"`

	// TimedOut indicates the scan was cut short by its deadline.
	TimedOut bool `json:"timed_out"`

	// Error contains the failure that stopped the scan, if any.
	Error string `json:"error,omitempty"`
}

// NewScanSummary derives a summary from a full scan report.
func NewScanSummary(r *ScanReport) *ScanSummary {
	s := &ScanSummary{
		Domain:          r.Domain,
		DateScanned:     r.DateScanned,
		SiteType:        r.SiteType,
		PagesCrawled:    r.PagesCrawled,
		PagesBlocked:    r.PagesBlocked,
		RobotsFound:     r.RobotsFound,
		SitemapURLCount: r.SitemapURLCount,
		Issues:          r.AllIssues(),
		TimedOut:        r.TimedOut,
		Error:           r.Error,
	}

	if r.SiteScore != nil {
		s.OverallScore = r.SiteScore.OverallScore
		s.Capped = r.SiteScore.Capped
		s.RubricVersion = r.SiteScore.RubricVersion
		s.PillarScores = r.SiteScore.PillarScores
	}

	for _, issue := range s.Issues {
		switch issue.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}

	return s
}

// TotalIssues returns the total number of issues across all severities.
func (s *ScanSummary) TotalIssues() int {
	return s.CriticalCount + s.HighCount + s.MediumCount + s.LowCount + s.InfoCount
}

// HasIssues reports whether the scan surfaced any issues.
func (s *ScanSummary) HasIssues() bool {
	return s.TotalIssues() > 0
}

// IssuesBySeverity returns the issues at the given severity level,
// preserving the summary's sorted order.
func (s *ScanSummary) IssuesBySeverity(sev Severity) []Issue {
	var issues []Issue
	for _, issue := range s.Issues {
		if issue.Severity == sev {
			issues = append(issues, issue)
		}
	}
	return issues
}
