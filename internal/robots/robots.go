package robots

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Rule is the accumulated directive set for one user-agent block.
type Rule struct {
	// UserAgent is the user-agent value exactly as written in the file.
	// Matching against it is case-insensitive.
	UserAgent string

	// Disallow contains the path patterns denied to this agent.
	Disallow []string

	// Allow contains the path patterns explicitly granted to this agent.
	// An empty Disallow directive is recorded here as "*".
	Allow []string

	// CrawlDelay is the declared delay in seconds, zero when absent.
	// Only positive numeric values are stored.
	CrawlDelay float64
}

// RuleSet is the parsed representation of a robots.txt document.
// It is immutable after construction and safe for concurrent reads.
type RuleSet struct {
	// Rules contains the user-agent blocks in document order.
	Rules []Rule

	// Sitemaps contains the absolute sitemap URLs declared anywhere in
	// the document, including outside user-agent blocks.
	Sitemaps []string
}

// Decision is the result of checking one URL against a rule set.
type Decision struct {
	// Allowed reports whether the crawler may fetch the path.
	Allowed bool

	// MatchedRule describes the Allow/Disallow pattern that decided the
	// outcome, empty when no pattern matched.
	MatchedRule string

	// CrawlDelay is the matched rule's crawl delay in seconds, zero when
	// no rule matched or none was declared.
	CrawlDelay float64
}

// Parse parses a robots.txt body into a RuleSet.
// It never fails: malformed content produces a best-effort partial result.
func Parse(robotsText string) *RuleSet {
	rs := &RuleSet{}

	var current *Rule

	closeBlock := func() {
		if current != nil {
			rs.Rules = append(rs.Rules, *current)
			current = nil
		}
	}

	for line := range strings.Lines(robotsText) {
		line = strings.TrimSpace(line)

		// Comments and blank lines do not end a block.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		directive, value, ok := splitDirective(line)
		if !ok {
			// Unrecognized content ends the current rule accumulation.
			closeBlock()
			continue
		}

		switch directive {
		case "user-agent":
			closeBlock()
			current = &Rule{UserAgent: value}
		case "disallow":
			if current == nil {
				continue
			}
			if value != "" {
				current.Disallow = append(current.Disallow, value)
			} else {
				// Empty Disallow means allow everything for this agent.
				current.Allow = append(current.Allow, "*")
			}
		case "allow":
			if current != nil && value != "" {
				current.Allow = append(current.Allow, value)
			}
		case "crawl-delay":
			if current == nil {
				continue
			}
			if delay, err := strconv.ParseFloat(value, 64); err == nil && delay > 0 {
				current.CrawlDelay = delay
			}
		case "sitemap":
			// Sitemap is global and valid outside any block.
			if value != "" {
				rs.Sitemaps = append(rs.Sitemaps, value)
			}
		default:
			// A recognized-looking but unknown directive ends the block,
			// matching how stray content is treated.
			closeBlock()
		}
	}

	closeBlock()
	return rs
}

// splitDirective splits "Directive: value" into its lowercase directive
// name and trimmed value. Returns ok=false for lines without a colon.
func splitDirective(line string) (directive, value string, ok bool) {
	name, rest, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(name)), strings.TrimSpace(rest), true
}

// FindMatchingRule resolves which rule applies to the given user agent.
//
// Precedence: exact case-insensitive match, then partial match (either
// string contains the other, first in rule order), then the wildcard rule.
// Returns nil when no rule applies, which callers treat as default allow.
func (rs *RuleSet) FindMatchingRule(userAgent string) *Rule {
	uaLower := strings.ToLower(userAgent)

	for i := range rs.Rules {
		if strings.ToLower(rs.Rules[i].UserAgent) == uaLower {
			return &rs.Rules[i]
		}
	}

	for i := range rs.Rules {
		ruleUA := strings.ToLower(rs.Rules[i].UserAgent)
		// An empty agent comes from a malformed "User-agent:" line and
		// would substring-match everything.
		if ruleUA == "*" || ruleUA == "" {
			continue
		}
		if strings.Contains(uaLower, ruleUA) || strings.Contains(ruleUA, uaLower) {
			return &rs.Rules[i]
		}
	}

	for i := range rs.Rules {
		if rs.Rules[i].UserAgent == "*" {
			return &rs.Rules[i]
		}
	}

	return nil
}

// IsPathAllowed checks one URL path against one rule.
//
// Any matching Allow pattern wins over any matching Disallow pattern.
// This is simpler than the longest-match precedence some crawlers use;
// the difference only matters for rule sets that both allow and disallow
// overlapping prefixes, and the bias is toward crawling.
func (r *Rule) IsPathAllowed(path string) Decision {
	// Normalize with a trailing slash so prefix matching treats /admin
	// and /admin/ the same.
	normalized := path
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	for _, pattern := range r.Allow {
		if matchesPattern(normalized, pattern) {
			return Decision{
				Allowed:     true,
				MatchedRule: "Allow: " + pattern,
				CrawlDelay:  r.CrawlDelay,
			}
		}
	}

	for _, pattern := range r.Disallow {
		if matchesPattern(normalized, pattern) {
			return Decision{
				Allowed:     false,
				MatchedRule: "Disallow: " + pattern,
				CrawlDelay:  r.CrawlDelay,
			}
		}
	}

	return Decision{Allowed: true, CrawlDelay: r.CrawlDelay}
}

// matchesPattern checks a normalized path against a robots.txt pattern.
// Supports exact matches, prefix matches, and * wildcards.
func matchesPattern(path, pattern string) bool {
	// An empty pattern matches everything.
	if pattern == "" {
		return true
	}

	normalized := pattern
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	if path == normalized || strings.HasPrefix(path, normalized) {
		return true
	}

	if strings.Contains(normalized, "*") {
		expr := strings.ReplaceAll(regexp.QuoteMeta(normalized), `\*`, ".*")
		re, err := regexp.Compile("^" + expr)
		if err != nil {
			return false
		}
		return re.MatchString(path)
	}

	return false
}

// CheckAllowance checks a full URL against the rule set for the given
// user agent, composing rule lookup, path matching, and crawl delay.
//
// A URL that fails to parse is reported as allowed (fail open): a
// malformed URL should never silently block a legitimate crawl. This is
// a policy choice, not a bug.
func (rs *RuleSet) CheckAllowance(rawURL, userAgent string) Decision {
	u, err := url.Parse(rawURL)
	// url.Parse accepts almost anything as an opaque path, so schemeless
	// non-path input ("not a valid url") is treated as a parse failure too.
	if err != nil || (u.Scheme == "" && !strings.HasPrefix(rawURL, "/")) {
		return Decision{Allowed: true, MatchedRule: "error parsing URL"}
	}

	rule := rs.FindMatchingRule(userAgent)
	if rule == nil {
		// No rule applies to this agent, default allow.
		return Decision{Allowed: true}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return rule.IsPathAllowed(path)
}
