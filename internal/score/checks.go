package score

import (
	"fmt"
	"strings"

	"github.com/aeoscan/aeoscan/internal/model"
)

// checkFunc evaluates one rubric check against extracted page signals,
// returning a raw score on the 0-5 scale and any surfaced issues.
type checkFunc func(p *model.PageSignals) (float64, []model.Issue)

// checkFuncs maps rubric check IDs to their evaluation functions.
// A check ID absent from this map scores 0; a rubric must not promise
// evaluations the engine cannot perform.
var checkFuncs = map[string]checkFunc{
	"has_jsonld":              checkHasJSONLD,
	"has_organization_schema": checkHasOrganizationSchema,
	"has_webpage_schema":      checkHasWebPageSchema,
	"schema_parseable":        checkSchemaParseable,
	"has_title":               checkHasTitle,
	"title_optimal_length":    checkTitleOptimalLength,
	"has_meta_description":    checkHasMetaDescription,
	"has_canonical":           checkHasCanonical,
	"has_open_graph":          checkHasOpenGraph,
	"page_crawlable":          checkPageCrawlable,
	"in_sitemap":              checkInSitemap,
	"has_single_h1":           checkHasSingleH1,
	"heading_hierarchy_valid": checkHeadingHierarchy,
	"has_sufficient_content":  checkSufficientContent,
	"content_has_sections":    checkContentSections,
	"has_faq_section":         checkHasFAQSection,
	"images_have_alt":         checkImagesHaveAlt,
}

// evaluateCheck runs the evaluation function for checkID. Unknown check
// IDs score 0 with no issues.
func evaluateCheck(checkID string, p *model.PageSignals) (float64, []model.Issue) {
	fn, ok := checkFuncs[checkID]
	if !ok {
		return 0, nil
	}
	return fn(p)
}

// hasSchemaTypeLike reports whether any parsed schema block declares a
// @type containing one of the given fragments, case-insensitively.
// Unlike exact type matching this catches subtypes such as
// LocalBusiness implied via "organization" naming conventions used in
// hand-written JSON-LD.
func hasSchemaTypeLike(p *model.PageSignals, fragments ...string) bool {
	for _, block := range p.SchemaBlocks {
		for _, t := range block.Types {
			lower := strings.ToLower(t)
			for _, fragment := range fragments {
				if strings.Contains(lower, fragment) {
					return true
				}
			}
		}
	}
	return false
}

func checkHasJSONLD(p *model.PageSignals) (float64, []model.Issue) {
	if len(p.SchemaBlocks) > 0 {
		return 5, nil
	}
	return 0, []model.Issue{
		model.NewIssue("missing_jsonld", "Page has no JSON-LD structured data", p.URL),
	}
}

func checkHasOrganizationSchema(p *model.PageSignals) (float64, []model.Issue) {
	if hasSchemaTypeLike(p, "organization", "localbusiness") {
		return 5, nil
	}
	return 0, []model.Issue{
		model.NewIssue("missing_organization_schema", "No Organization schema block found", p.URL),
	}
}

func checkHasWebPageSchema(p *model.PageSignals) (float64, []model.Issue) {
	if hasSchemaTypeLike(p, "webpage", "website", "article") {
		return 5, nil
	}
	return 0, []model.Issue{
		model.NewIssue("missing_webpage_schema", "No WebPage schema block found", p.URL),
	}
}

func checkSchemaParseable(p *model.PageSignals) (float64, []model.Issue) {
	total := len(p.SchemaBlocks)
	if total == 0 {
		// Absence is has_jsonld's problem, not a validity failure.
		return 5, nil
	}

	parseable := p.ParseableSchemaCount()
	if parseable == total {
		return 5, nil
	}

	score := 5 * float64(parseable) / float64(total)
	return score, []model.Issue{
		model.NewIssue("schema_unparseable",
			fmt.Sprintf("%d of %d JSON-LD blocks failed to parse", total-parseable, total), p.URL),
	}
}

func checkHasTitle(p *model.PageSignals) (float64, []model.Issue) {
	if strings.TrimSpace(p.Title) != "" {
		return 5, nil
	}
	return 0, []model.Issue{
		model.NewIssue("missing_title", "Page has no title tag", p.URL),
	}
}

func checkTitleOptimalLength(p *model.PageSignals) (float64, []model.Issue) {
	length := len(strings.TrimSpace(p.Title))
	switch {
	case length == 0:
		return 0, []model.Issue{
			model.NewIssue("title_length", "Page has no title to measure", p.URL),
		}
	case length >= 50 && length <= 60:
		return 5, nil
	default:
		return 2, []model.Issue{
			model.NewIssue("title_length",
				fmt.Sprintf("Title is %d characters, optimal is 50-60", length), p.URL),
		}
	}
}

func checkHasMetaDescription(p *model.PageSignals) (float64, []model.Issue) {
	if strings.TrimSpace(p.MetaDescription) != "" {
		return 5, nil
	}
	return 0, []model.Issue{
		model.NewIssue("missing_meta_description", "Page has no meta description", p.URL),
	}
}

func checkHasCanonical(p *model.PageSignals) (float64, []model.Issue) {
	if p.Canonical != "" {
		return 5, nil
	}
	return 0, []model.Issue{
		model.NewIssue("missing_canonical", "Page has no canonical link", p.URL),
	}
}

func checkHasOpenGraph(p *model.PageSignals) (float64, []model.Issue) {
	var present int
	for _, property := range []string{"og:title", "og:description"} {
		if p.OpenGraph[property] != "" {
			present++
		}
	}
	switch present {
	case 2:
		return 5, nil
	case 1:
		return 2, []model.Issue{
			model.NewIssue("missing_open_graph", "Open Graph tags are incomplete", p.URL),
		}
	default:
		return 0, []model.Issue{
			model.NewIssue("missing_open_graph", "Page has no Open Graph tags", p.URL),
		}
	}
}

func checkPageCrawlable(p *model.PageSignals) (float64, []model.Issue) {
	switch {
	case !p.Crawlable:
		return 0, []model.Issue{
			model.NewIssue("page_not_crawlable", "URL is disallowed by robots.txt", p.URL),
		}
	case p.NoIndex:
		return 0, []model.Issue{
			model.NewIssue("page_not_crawlable", "Page carries a noindex directive", p.URL),
		}
	case p.StatusCode < 200 || p.StatusCode >= 300:
		return 0, []model.Issue{
			model.NewIssue("page_not_crawlable",
				fmt.Sprintf("Page returned status %d", p.StatusCode), p.URL),
		}
	default:
		return 5, nil
	}
}

func checkInSitemap(p *model.PageSignals) (float64, []model.Issue) {
	if p.SitemapListed {
		return 5, nil
	}
	return 0, []model.Issue{
		model.NewIssue("missing_sitemap", "URL is not listed in any sitemap", p.URL),
	}
}

func checkHasSingleH1(p *model.PageSignals) (float64, []model.Issue) {
	switch n := len(p.Headings.H1); {
	case n == 1:
		return 5, nil
	case n == 0:
		return 0, []model.Issue{
			model.NewIssue("multiple_h1", "Page has no H1 heading", p.URL),
		}
	default:
		return 2, []model.Issue{
			model.NewIssue("multiple_h1",
				fmt.Sprintf("Page has %d H1 headings, expected exactly one", n), p.URL),
		}
	}
}

func checkHeadingHierarchy(p *model.PageSignals) (float64, []model.Issue) {
	h1, h2, h3 := len(p.Headings.H1), len(p.Headings.H2), len(p.Headings.H3)
	switch {
	case h1 == 0 && h2 == 0 && h3 == 0:
		return 0, []model.Issue{
			model.NewIssue("broken_heading_hierarchy", "Page has no headings at all", p.URL),
		}
	case h2 > 0 && h1 == 0:
		return 0, []model.Issue{
			model.NewIssue("broken_heading_hierarchy", "H2 headings appear without an H1", p.URL),
		}
	case h3 > 0 && h2 == 0:
		return 0, []model.Issue{
			model.NewIssue("broken_heading_hierarchy", "H3 headings appear without an H2", p.URL),
		}
	default:
		return 5, nil
	}
}

func checkSufficientContent(p *model.PageSignals) (float64, []model.Issue) {
	switch {
	case p.WordCount >= 300:
		return 5, nil
	case p.WordCount >= 150:
		return 2, []model.Issue{
			model.NewIssue("thin_content",
				fmt.Sprintf("Page has only %d words, 300 or more recommended", p.WordCount), p.URL),
		}
	default:
		return 0, []model.Issue{
			model.NewIssue("thin_content",
				fmt.Sprintf("Page has only %d words, 300 or more recommended", p.WordCount), p.URL),
		}
	}
}

func checkContentSections(p *model.PageSignals) (float64, []model.Issue) {
	sections := len(p.Headings.H2) + len(p.Headings.H3)
	switch {
	case sections >= 2:
		return 5, nil
	case sections == 1:
		return 2, []model.Issue{
			model.NewIssue("unstructured_content", "Content has only one section heading", p.URL),
		}
	default:
		return 0, []model.Issue{
			model.NewIssue("unstructured_content", "Content has no section headings", p.URL),
		}
	}
}

func checkHasFAQSection(p *model.PageSignals) (float64, []model.Issue) {
	if hasSchemaTypeLike(p, "faq", "question") {
		return 5, nil
	}
	for _, headings := range [][]string{p.Headings.H1, p.Headings.H2, p.Headings.H3} {
		for _, h := range headings {
			if strings.Contains(strings.ToLower(h), "faq") ||
				strings.Contains(strings.ToLower(h), "frequently asked") {
				return 5, nil
			}
		}
	}
	return 0, []model.Issue{
		model.NewIssue("missing_faq", "Page has no FAQ schema or FAQ section", p.URL),
	}
}

func checkImagesHaveAlt(p *model.PageSignals) (float64, []model.Issue) {
	if p.Images.Total == 0 {
		return 5, nil
	}
	if p.Images.WithoutAlt == 0 {
		return 5, nil
	}

	score := 5 * float64(p.Images.WithAlt) / float64(p.Images.Total)
	return score, []model.Issue{
		model.NewIssue("images_missing_alt",
			fmt.Sprintf("%d of %d images lack alt text", p.Images.WithoutAlt, p.Images.Total), p.URL),
	}
}
