package model

import (
	"testing"
	"time"
)

// TestSeverityString tests the human-readable severity names.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		severity Severity
		want     string
	}{
		{name: "info", severity: SeverityInfo, want: "INFO"},
		{name: "low", severity: SeverityLow, want: "LOW"},
		{name: "medium", severity: SeverityMedium, want: "MEDIUM"},
		{name: "high", severity: SeverityHigh, want: "HIGH"},
		{name: "critical", severity: SeverityCritical, want: "CRITICAL"},
		{name: "unknown", severity: Severity(99), want: "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.severity.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestParseSeverity tests conversion from rubric file names.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Severity
		wantErr bool
	}{
		{name: "info", input: "info", want: SeverityInfo},
		{name: "low", input: "low", want: SeverityLow},
		{name: "medium", input: "medium", want: SeverityMedium},
		{name: "high", input: "high", want: SeverityHigh},
		{name: "critical", input: "critical", want: SeverityCritical},
		{name: "unknown rejected", input: "severe", wantErr: true},
		{name: "uppercase rejected", input: "HIGH", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSeverity(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSeverity(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSeverity(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestIssueCatalog tests the issue code catalog lookups.
func TestIssueCatalog(t *testing.T) {
	t.Parallel()

	t.Run("known code returns catalog severity", func(t *testing.T) {
		t.Parallel()

		if !KnownIssueCode("missing_jsonld") {
			t.Error("expected missing_jsonld to be cataloged")
		}
		if got := GetIssueSeverity("missing_jsonld"); got != SeverityHigh {
			t.Errorf("severity = %v, want %v", got, SeverityHigh)
		}
		if got := GetIssueSeverity("page_not_crawlable"); got != SeverityCritical {
			t.Errorf("severity = %v, want %v", got, SeverityCritical)
		}
	})

	t.Run("unknown code defaults to info", func(t *testing.T) {
		t.Parallel()

		if KnownIssueCode("made_up_code") {
			t.Error("expected made_up_code to be uncataloged")
		}
		if got := GetIssueSeverity("made_up_code"); got != SeverityInfo {
			t.Errorf("severity = %v, want %v", got, SeverityInfo)
		}
	})

	t.Run("catalog entries carry remediation text", func(t *testing.T) {
		t.Parallel()

		info := GetIssueInfo("missing_meta_description")
		if info.Impact == "" {
			t.Error("expected impact text")
		}
		if info.Recommendation == "" {
			t.Error("expected recommendation text")
		}
	})

	t.Run("new issue fills severity from catalog", func(t *testing.T) {
		t.Parallel()

		issue := NewIssue("thin_content", "only 50 words", "https://example.com/about")
		if issue.Severity != SeverityHigh {
			t.Errorf("severity = %v, want %v", issue.Severity, SeverityHigh)
		}
		if issue.SeverityText != "HIGH" {
			t.Errorf("severity text = %q, want %q", issue.SeverityText, "HIGH")
		}
		if issue.Location != "https://example.com/about" {
			t.Errorf("location = %q", issue.Location)
		}
	})
}

// buildScoredReport creates a report with two scored pages for aggregation tests.
func buildScoredReport() *ScanReport {
	report := NewScanReport("example.com")
	report.PagesCrawled = 2

	report.PageScores["https://example.com/b"] = &ScoreResult{
		CheckScores: map[string]CheckScore{
			"meta": {
				Raw: 1,
				Issues: []Issue{
					NewIssue("missing_meta_description", "no meta description", "https://example.com/b"),
				},
			},
		},
		OverallScore: 6.0,
	}
	report.PageScores["https://example.com/a"] = &ScoreResult{
		CheckScores: map[string]CheckScore{
			"jsonld": {
				Raw: 0,
				Issues: []Issue{
					NewIssue("missing_jsonld", "no JSON-LD blocks found", "https://example.com/a"),
					NewIssue("images_missing_alt", "2 images missing alt text", "https://example.com/a"),
				},
			},
		},
		OverallScore: 4.0,
	}

	return report
}

// TestScanReportAllIssues tests cross-page issue aggregation and ordering.
func TestScanReportAllIssues(t *testing.T) {
	t.Parallel()

	report := buildScoredReport()
	issues := report.AllIssues()

	if len(issues) != 3 {
		t.Fatalf("len(issues) = %d, want 3", len(issues))
	}

	// Severity descending, then code ascending.
	wantCodes := []string{"missing_jsonld", "missing_meta_description", "images_missing_alt"}
	for i, want := range wantCodes {
		if issues[i].Code != want {
			t.Errorf("issues[%d].Code = %q, want %q", i, issues[i].Code, want)
		}
	}
}

// TestScanReportIssueCounts tests the severity histogram.
func TestScanReportIssueCounts(t *testing.T) {
	t.Parallel()

	counts := buildScoredReport().IssueCountsBySeverity()

	if counts[SeverityHigh] != 1 {
		t.Errorf("high count = %d, want 1", counts[SeverityHigh])
	}
	if counts[SeverityMedium] != 1 {
		t.Errorf("medium count = %d, want 1", counts[SeverityMedium])
	}
	if counts[SeverityLow] != 1 {
		t.Errorf("low count = %d, want 1", counts[SeverityLow])
	}
	if counts[SeverityCritical] != 0 {
		t.Errorf("critical count = %d, want 0", counts[SeverityCritical])
	}
}

// TestScanReportSortedPageURLs tests deterministic page ordering.
func TestScanReportSortedPageURLs(t *testing.T) {
	t.Parallel()

	urls := buildScoredReport().SortedPageURLs()

	want := []string{"https://example.com/a", "https://example.com/b"}
	if len(urls) != len(want) {
		t.Fatalf("len(urls) = %d, want %d", len(urls), len(want))
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

// TestScoreResultMaxSeverity tests the severity ceiling lookup.
func TestScoreResultMaxSeverity(t *testing.T) {
	t.Parallel()

	t.Run("returns highest severity", func(t *testing.T) {
		t.Parallel()

		result := &ScoreResult{
			CheckScores: map[string]CheckScore{
				"a": {Issues: []Issue{NewIssue("title_length", "title too short", "")}},
				"b": {Issues: []Issue{NewIssue("missing_jsonld", "no JSON-LD", "")}},
			},
		}

		sev, found := result.MaxSeverity()
		if !found {
			t.Fatal("expected issues to be found")
		}
		if sev != SeverityHigh {
			t.Errorf("max severity = %v, want %v", sev, SeverityHigh)
		}
	})

	t.Run("no issues", func(t *testing.T) {
		t.Parallel()

		result := &ScoreResult{
			CheckScores: map[string]CheckScore{
				"a": {Raw: 5},
			},
		}

		if _, found := result.MaxSeverity(); found {
			t.Error("expected no issues found")
		}
	})
}

// TestNewScanSummary tests summary derivation from a full report.
func TestNewScanSummary(t *testing.T) {
	t.Parallel()

	report := buildScoredReport()
	report.DateScanned = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	report.SiteType = "docs"
	report.RobotsFound = true
	report.PagesBlocked = 1
	report.SiteScore = &ScoreResult{
		OverallScore:  5.0,
		Capped:        true,
		RubricVersion: "1.0.0",
		PillarScores:  map[string]float64{"machine_readability": 40},
	}

	summary := NewScanSummary(report)

	if summary.Domain != "example.com" {
		t.Errorf("domain = %q", summary.Domain)
	}
	if summary.OverallScore != 5.0 {
		t.Errorf("overall = %v, want 5.0", summary.OverallScore)
	}
	if !summary.Capped {
		t.Error("expected capped flag to carry over")
	}
	if summary.RubricVersion != "1.0.0" {
		t.Errorf("rubric version = %q", summary.RubricVersion)
	}
	if summary.HighCount != 1 || summary.MediumCount != 1 || summary.LowCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1",
			summary.HighCount, summary.MediumCount, summary.LowCount)
	}
	if summary.TotalIssues() != 3 {
		t.Errorf("total = %d, want 3", summary.TotalIssues())
	}
	if !summary.HasIssues() {
		t.Error("expected HasIssues true")
	}

	high := summary.IssuesBySeverity(SeverityHigh)
	if len(high) != 1 || high[0].Code != "missing_jsonld" {
		t.Errorf("high issues = %+v", high)
	}

	t.Run("without site score", func(t *testing.T) {
		t.Parallel()

		bare := NewScanSummary(NewScanReport("bare.example"))
		if bare.OverallScore != 0 {
			t.Errorf("overall = %v, want 0", bare.OverallScore)
		}
		if bare.HasIssues() {
			t.Error("expected no issues")
		}
	})
}
