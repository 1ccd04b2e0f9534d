package model

// Issue represents a single problem surfaced by a rubric check.
// Issues are attached to check scores and drive severity-based score capping.
type Issue struct {
	// Code is the issue code identifier (e.g., "missing_jsonld").
	// This maps to the issue catalog in issueInfoMapping.
	Code string `json:"code"`

	// Severity is the impact level of the issue.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Message describes what was found on the audited page.
	Message string `json:"message"`

	// Location is where the issue was discovered (URL or selector).
	Location string `json:"location,omitempty"`
}

// IssueInfo contains catalog metadata about an issue code including severity,
// impact description, and remediation recommendation.
type IssueInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// issueInfoMapping maps issue codes to their metadata.
// This centralized catalog ensures consistent severity assessment across
// the application and gives report writers remediation text.
//
// Design decision: We use a map rather than embedding severity in each
// check definition because:
// 1. It allows updating severity assessments without editing rubric files
// 2. It provides a single source of truth for issue metadata
// 3. It makes it easy to generate issue documentation
var issueInfoMapping = map[string]IssueInfo{
	// CRITICAL - bounds the entire audit result
	"page_not_crawlable": {
		Severity:       SeverityCritical,
		Impact:         "The page is blocked by robots.txt or a noindex directive, so answer engines cannot read it at all.",
		Recommendation: "Allow crawler access in robots.txt and remove noindex directives from pages that should be cited.",
	},
	"schema_unparseable": {
		Severity:       SeverityCritical,
		Impact:         "JSON-LD blocks exist but do not parse, so structured data is invisible to answer engines.",
		Recommendation: "Validate JSON-LD with a linter and fix syntax errors; broken schema is worse than none for trust signals.",
	},

	// HIGH - suppresses visibility across a pillar
	"missing_jsonld": {
		Severity:       SeverityHigh,
		Impact:         "No JSON-LD structured data was found, removing the strongest machine-readable signal about the page.",
		Recommendation: "Add JSON-LD blocks for the page's primary entity (Organization, WebPage, Article, or FAQPage).",
	},
	"missing_organization_schema": {
		Severity:       SeverityHigh,
		Impact:         "Answer engines cannot attribute the content to a known organization, lowering citation confidence.",
		Recommendation: "Add an Organization schema with name, url, and logo on the home page.",
	},
	"thin_content": {
		Severity:       SeverityHigh,
		Impact:         "Content below the word floor rarely contains enough substance to be quoted as an answer.",
		Recommendation: "Expand the page to cover the topic in depth; aim for at least 300 words of body text.",
	},
	"missing_title": {
		Severity:       SeverityHigh,
		Impact:         "Pages without a title element are poorly represented in answer-engine results.",
		Recommendation: "Add a unique, descriptive <title> to every page.",
	},

	// MEDIUM - measurable reduction in citation likelihood
	"missing_meta_description": {
		Severity:       SeverityMedium,
		Impact:         "Without a meta description, answer engines synthesize their own summary, often poorly.",
		Recommendation: "Write a 150-160 character meta description that answers the page's core question.",
	},
	"multiple_h1": {
		Severity:       SeverityMedium,
		Impact:         "Multiple H1 elements blur the page's main topic for content extraction.",
		Recommendation: "Keep exactly one H1 per page and demote the rest to H2.",
	},
	"broken_heading_hierarchy": {
		Severity:       SeverityMedium,
		Impact:         "Skipped heading levels make section extraction unreliable for answer engines.",
		Recommendation: "Nest headings strictly (H1 then H2 then H3) without skipping levels.",
	},
	"missing_canonical": {
		Severity:       SeverityMedium,
		Impact:         "Without a canonical link, duplicate URLs split the page's citation authority.",
		Recommendation: "Add <link rel=\"canonical\"> pointing at the preferred URL.",
	},
	"missing_webpage_schema": {
		Severity:       SeverityMedium,
		Impact:         "WebPage or Article schema contextualizes content; its absence weakens entity association.",
		Recommendation: "Add WebPage or Article schema with headline, description, and dates.",
	},
	"unstructured_content": {
		Severity:       SeverityMedium,
		Impact:         "Long unbroken prose without sections or lists is hard to excerpt as a direct answer.",
		Recommendation: "Break content into H2 sections and use lists for enumerable facts.",
	},
	"missing_faq": {
		Severity:       SeverityMedium,
		Impact:         "Question-and-answer sections are the most directly citable format and none were found.",
		Recommendation: "Add an FAQ section with FAQPage schema for the questions users actually ask.",
	},
	"missing_sitemap": {
		Severity:       SeverityMedium,
		Impact:         "Without a sitemap, crawlers may miss pages and answer engines index the site unevenly.",
		Recommendation: "Publish a sitemap.xml and declare it in robots.txt.",
	},

	// LOW - minor polish issues
	"title_length": {
		Severity:       SeverityLow,
		Impact:         "Titles that are too short or too long get truncated or padded in result displays.",
		Recommendation: "Keep titles between 30 and 60 characters.",
	},
	"missing_open_graph": {
		Severity:       SeverityLow,
		Impact:         "Missing Open Graph tags degrade how shared links render, reducing engagement signals.",
		Recommendation: "Add og:title, og:description, and og:image meta tags.",
	},
	"images_missing_alt": {
		Severity:       SeverityLow,
		Impact:         "Images without alt text contribute nothing to content understanding.",
		Recommendation: "Add descriptive alt attributes to content images.",
	},

	// INFO - no score impact
	"no_crawl_delay": {
		Severity:       SeverityInfo,
		Impact:         "robots.txt declares no crawl delay; crawlers use their own politeness defaults.",
		Recommendation: "No action needed unless crawler load becomes a concern.",
	},
}

// KnownIssueCode reports whether code is in the issue catalog.
func KnownIssueCode(code string) bool {
	_, ok := issueInfoMapping[code]
	return ok
}

// GetIssueSeverity returns the severity level for an issue code.
// Returns SeverityInfo if the issue code is not in the catalog.
func GetIssueSeverity(code string) Severity {
	if info, ok := issueInfoMapping[code]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetIssueInfo returns the full catalog entry for an issue code.
// Returns a default IssueInfo with SeverityInfo if the code is not cataloged.
func GetIssueInfo(code string) IssueInfo {
	if info, ok := issueInfoMapping[code]; ok {
		return info
	}
	return IssueInfo{
		Severity:       SeverityInfo,
		Impact:         "Uncataloged issue code. Review manually.",
		Recommendation: "Investigate the issue and assess impact.",
	}
}

// NewIssue builds an Issue for the given catalog code with severity filled
// in from the catalog.
func NewIssue(code, message, location string) Issue {
	sev := GetIssueSeverity(code)
	return Issue{
		Code:         code,
		Severity:     sev,
		SeverityText: sev.String(),
		Message:      message,
		Location:     location,
	}
}
