package robots

import (
	"reflect"
	"strings"
	"testing"
)

// TestParse tests robots.txt parsing against representative documents.
func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("parses full example document", func(t *testing.T) {
		t.Parallel()

		text := "User-agent: *\nDisallow: /admin\nAllow: /admin/public\nCrawl-delay: 2\n\nSitemap: https://example.com/sitemap.xml\n"
		rs := Parse(text)

		if len(rs.Rules) != 1 {
			t.Fatalf("expected 1 rule, got %d", len(rs.Rules))
		}
		rule := rs.Rules[0]
		if rule.UserAgent != "*" {
			t.Errorf("UserAgent = %q, want %q", rule.UserAgent, "*")
		}
		if !reflect.DeepEqual(rule.Disallow, []string{"/admin"}) {
			t.Errorf("Disallow = %v, want [/admin]", rule.Disallow)
		}
		if !reflect.DeepEqual(rule.Allow, []string{"/admin/public"}) {
			t.Errorf("Allow = %v, want [/admin/public]", rule.Allow)
		}
		if rule.CrawlDelay != 2 {
			t.Errorf("CrawlDelay = %v, want 2", rule.CrawlDelay)
		}
		if !reflect.DeepEqual(rs.Sitemaps, []string{"https://example.com/sitemap.xml"}) {
			t.Errorf("Sitemaps = %v, want [https://example.com/sitemap.xml]", rs.Sitemaps)
		}
	})

	t.Run("empty disallow becomes catch-all allow", func(t *testing.T) {
		t.Parallel()

		rs := Parse("User-agent: googlebot\nDisallow:\n")

		if len(rs.Rules) != 1 {
			t.Fatalf("expected 1 rule, got %d", len(rs.Rules))
		}
		if !reflect.DeepEqual(rs.Rules[0].Allow, []string{"*"}) {
			t.Errorf("Allow = %v, want [*]", rs.Rules[0].Allow)
		}
		if len(rs.Rules[0].Disallow) != 0 {
			t.Errorf("Disallow = %v, want empty", rs.Rules[0].Disallow)
		}
	})

	t.Run("empty allow values are ignored", func(t *testing.T) {
		t.Parallel()

		rs := Parse("User-agent: *\nAllow:\nDisallow: /private\n")

		if len(rs.Rules[0].Allow) != 0 {
			t.Errorf("Allow = %v, want empty", rs.Rules[0].Allow)
		}
	})

	t.Run("directives outside a block are discarded", func(t *testing.T) {
		t.Parallel()

		rs := Parse("Disallow: /orphan\nUser-agent: *\nDisallow: /admin\n")

		if len(rs.Rules) != 1 {
			t.Fatalf("expected 1 rule, got %d", len(rs.Rules))
		}
		if !reflect.DeepEqual(rs.Rules[0].Disallow, []string{"/admin"}) {
			t.Errorf("Disallow = %v, want [/admin]", rs.Rules[0].Disallow)
		}
	})

	t.Run("unknown line closes an open block", func(t *testing.T) {
		t.Parallel()

		rs := Parse("User-agent: *\nDisallow: /a\ngarbage line\nDisallow: /b\n")

		if len(rs.Rules) != 1 {
			t.Fatalf("expected 1 rule, got %d", len(rs.Rules))
		}
		// /b arrived after the block closed, so only /a is recorded.
		if !reflect.DeepEqual(rs.Rules[0].Disallow, []string{"/a"}) {
			t.Errorf("Disallow = %v, want [/a]", rs.Rules[0].Disallow)
		}
	})

	t.Run("sitemap outside blocks is still collected", func(t *testing.T) {
		t.Parallel()

		rs := Parse("Sitemap: https://example.com/a.xml\nUser-agent: *\nDisallow: /x\n\nSitemap: https://example.com/b.xml\n")

		want := []string{"https://example.com/a.xml", "https://example.com/b.xml"}
		if !reflect.DeepEqual(rs.Sitemaps, want) {
			t.Errorf("Sitemaps = %v, want %v", rs.Sitemaps, want)
		}
	})

	t.Run("comments and blank lines do not end blocks", func(t *testing.T) {
		t.Parallel()

		rs := Parse("User-agent: *\n# comment\n\nDisallow: /a\nDisallow: /b\n")

		if !reflect.DeepEqual(rs.Rules[0].Disallow, []string{"/a", "/b"}) {
			t.Errorf("Disallow = %v, want [/a /b]", rs.Rules[0].Disallow)
		}
	})

	t.Run("non-numeric crawl delay is dropped", func(t *testing.T) {
		t.Parallel()

		rs := Parse("User-agent: *\nCrawl-delay: soon\nDisallow: /a\n")

		if rs.Rules[0].CrawlDelay != 0 {
			t.Errorf("CrawlDelay = %v, want 0", rs.Rules[0].CrawlDelay)
		}
	})

	t.Run("negative crawl delay is dropped", func(t *testing.T) {
		t.Parallel()

		rs := Parse("User-agent: *\nCrawl-delay: -5\n")

		if rs.Rules[0].CrawlDelay != 0 {
			t.Errorf("CrawlDelay = %v, want 0", rs.Rules[0].CrawlDelay)
		}
	})
}

// TestParseDeterminism checks that parsing never fails and that parsing
// the same text twice yields structurally equal rule sets.
func TestParseDeterminism(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"garbage\nmore garbage\n::::\n",
		"User-agent: a\nUser-agent: b\nDisallow: /x\n",
		strings.Repeat("User-agent: bot\nDisallow: /p\n\n", 50),
		"User-agent: *\rDisallow: /mixed\r\n",
	}

	for _, text := range inputs {
		first := Parse(text)
		second := Parse(text)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Parse not deterministic for input %q", text)
		}
	}
}

// TestFindMatchingRule tests the user-agent precedence chain.
func TestFindMatchingRule(t *testing.T) {
	t.Parallel()

	text := "User-agent: AEOBot\nDisallow: /exact\n\nUser-agent: bot\nDisallow: /partial\n\nUser-agent: *\nDisallow: /wildcard\n"
	rs := Parse(text)

	testCases := []struct {
		name         string
		userAgent    string
		wantDisallow string
	}{
		{"exact match case-insensitive", "aeobot", "/exact"},
		{"partial match rule-in-agent", "MegaBot/2.0", "/partial"},
		{"partial match agent-in-rule picks first in order", "bo", "/exact"},
		{"wildcard fallback", "unrelated-crawler", "/wildcard"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rule := rs.FindMatchingRule(tc.userAgent)
			if rule == nil {
				t.Fatal("expected a matching rule, got nil")
			}
			if rule.Disallow[0] != tc.wantDisallow {
				t.Errorf("matched rule with Disallow %q, want %q", rule.Disallow[0], tc.wantDisallow)
			}
		})
	}

	t.Run("no rules means nil", func(t *testing.T) {
		t.Parallel()
		empty := Parse("")
		if rule := empty.FindMatchingRule("anything"); rule != nil {
			t.Errorf("expected nil rule, got %+v", rule)
		}
	})

	t.Run("empty agent rule never partial-matches", func(t *testing.T) {
		t.Parallel()

		// A bare "User-agent:" line yields an empty agent name, which
		// must not substring-match every crawler ahead of the wildcard.
		malformed := Parse("User-agent:\nDisallow: /trap\n\nUser-agent: *\nDisallow: /wildcard\n")
		rule := malformed.FindMatchingRule("unrelated-crawler")
		if rule == nil {
			t.Fatal("expected the wildcard rule, got nil")
		}
		if rule.Disallow[0] != "/wildcard" {
			t.Errorf("matched rule with Disallow %q, want %q", rule.Disallow[0], "/wildcard")
		}
	})
}

// TestIsPathAllowed tests pattern matching and Allow/Disallow precedence.
func TestIsPathAllowed(t *testing.T) {
	t.Parallel()

	rule := Rule{
		UserAgent: "*",
		Disallow:  []string{"/private"},
		Allow:     []string{"/private/public"},
	}

	testCases := []struct {
		name        string
		path        string
		wantAllowed bool
		wantMatched string
	}{
		{"allow overrides disallow", "/private/public/page", true, "Allow: /private/public"},
		{"disallowed path", "/private/secret", false, "Disallow: /private"},
		{"unmatched path defaults to allowed", "/blog/post", true, ""},
		{"path without trailing slash", "/private", false, "Disallow: /private"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := rule.IsPathAllowed(tc.path)
			if got.Allowed != tc.wantAllowed {
				t.Errorf("Allowed = %v, want %v", got.Allowed, tc.wantAllowed)
			}
			if got.MatchedRule != tc.wantMatched {
				t.Errorf("MatchedRule = %q, want %q", got.MatchedRule, tc.wantMatched)
			}
		})
	}

	t.Run("wildcard pattern", func(t *testing.T) {
		t.Parallel()
		r := Rule{Disallow: []string{"/search*"}}
		if got := r.IsPathAllowed("/search/results"); got.Allowed {
			t.Error("expected /search/results to be disallowed by /search*")
		}
		if got := r.IsPathAllowed("/blog"); !got.Allowed {
			t.Error("expected /blog to be allowed")
		}
	})

	t.Run("mid-path wildcard pattern", func(t *testing.T) {
		t.Parallel()
		r := Rule{Disallow: []string{"/*/draft"}}
		if got := r.IsPathAllowed("/posts/draft/1"); got.Allowed {
			t.Error("expected /posts/draft/1 to be disallowed by /*/draft")
		}
	})

	t.Run("empty pattern matches everything", func(t *testing.T) {
		t.Parallel()
		r := Rule{Disallow: []string{""}}
		if got := r.IsPathAllowed("/anything"); got.Allowed {
			t.Error("expected empty disallow pattern to match all paths")
		}
	})

	t.Run("empty disallow recorded as allow-all permits every path", func(t *testing.T) {
		t.Parallel()
		rs := Parse("User-agent: *\nDisallow:\n")
		for _, path := range []string{"/", "/admin", "/deep/nested/path"} {
			if got := rs.Rules[0].IsPathAllowed(path); !got.Allowed {
				t.Errorf("path %q should be allowed by empty Disallow", path)
			}
		}
	})
}

// TestCheckAllowance tests the composed URL-level check.
func TestCheckAllowance(t *testing.T) {
	t.Parallel()

	text := "User-agent: *\nDisallow: /admin\nAllow: /admin/public\nCrawl-delay: 2\n\nSitemap: https://example.com/sitemap.xml\n"
	rs := Parse(text)

	t.Run("allowed URL with matched allow rule", func(t *testing.T) {
		t.Parallel()
		got := rs.CheckAllowance("https://example.com/admin/public/page", "AEOBot")
		if !got.Allowed {
			t.Error("expected allowed")
		}
		if got.MatchedRule != "Allow: /admin/public" {
			t.Errorf("MatchedRule = %q, want %q", got.MatchedRule, "Allow: /admin/public")
		}
	})

	t.Run("denied URL carries crawl delay", func(t *testing.T) {
		t.Parallel()
		got := rs.CheckAllowance("https://example.com/admin/secret", "AEOBot")
		if got.Allowed {
			t.Error("expected denied")
		}
		if got.MatchedRule != "Disallow: /admin" {
			t.Errorf("MatchedRule = %q, want %q", got.MatchedRule, "Disallow: /admin")
		}
		if got.CrawlDelay != 2 {
			t.Errorf("CrawlDelay = %v, want 2", got.CrawlDelay)
		}
	})

	t.Run("fails open on unparseable URL", func(t *testing.T) {
		t.Parallel()
		got := rs.CheckAllowance("not a valid url", "AEOBot")
		if !got.Allowed {
			t.Error("expected fail-open allowance for malformed URL")
		}
	})

	t.Run("no matching rule defaults to allowed", func(t *testing.T) {
		t.Parallel()
		only := Parse("User-agent: othercrawler-xyz\nDisallow: /\n")
		got := only.CheckAllowance("https://example.com/page", "AEOBot")
		if !got.Allowed {
			t.Error("expected default allow when no rule matches")
		}
	})

	t.Run("empty path treated as root", func(t *testing.T) {
		t.Parallel()
		blockAll := Parse("User-agent: *\nDisallow: /\n")
		got := blockAll.CheckAllowance("https://example.com", "AEOBot")
		if got.Allowed {
			t.Error("expected root to be disallowed by Disallow: /")
		}
	})
}
