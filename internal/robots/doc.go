// Package robots parses robots.txt documents and answers path allowance
// queries with Allow/Disallow precedence and crawl-delay resolution.
//
// # Parsing
//
// Parse is best-effort and never fails: malformed lines end the current
// rule block instead of erroring, and an empty document yields an empty
// rule set. An empty Disallow value follows the robots.txt convention of
// granting blanket allowance and is recorded as a catch-all Allow pattern.
//
// # Precedence
//
// Rule lookup prefers an exact case-insensitive user-agent match, then a
// partial (substring either way) match in rule order, then the wildcard
// rule. Path matching lets any Allow match win over any Disallow match.
// This is deliberately simpler than the longest-match rule some crawlers
// implement; see CheckAllowance for the policy discussion.
//
// # Failure policy
//
// CheckAllowance fails open: a URL that cannot be parsed is reported as
// allowed so a malformed link never silently blocks a legitimate crawl.
// Completing scans is preferred over strict robots compliance here, and
// callers relying on strict compliance must pre-validate their URLs.
package robots
