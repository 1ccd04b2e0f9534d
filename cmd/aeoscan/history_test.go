package main

import (
	"context"
	"strings"
	"testing"

	"github.com/aeoscan/aeoscan/internal/database"
	"github.com/aeoscan/aeoscan/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history [domain]" {
			t.Errorf("expected use 'history [domain]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
	})
}

// saveReportWithScore stores a scan report with the given overall score.
func saveReportWithScore(t *testing.T, db *database.AuditDB, domain string, score float64) {
	t.Helper()

	report := model.NewScanReport(domain)
	report.PagesCrawled = 2
	report.SiteScore = &model.ScoreResult{
		PillarScores: map[string]float64{
			"machine_readability": score * 10,
			"content_structure":   score*10 - 5,
		},
		OverallScore:  score,
		RubricVersion: "1.0.0",
	}
	report.PageScores["https://"+domain+"/"] = &model.ScoreResult{
		CheckScores: map[string]model.CheckScore{
			"jsonld": {
				Raw: 0,
				Issues: []model.Issue{
					model.NewIssue("missing_jsonld", "no JSON-LD blocks found", "https://"+domain+"/"),
				},
			},
		},
		OverallScore: score,
	}

	if err := db.SaveScanReport(context.Background(), report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
}

// TestListDomains tests the domain listing path.
func TestListDomains(t *testing.T) {
	t.Parallel()

	t.Run("empty store", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		cmd, buf := newTestCommand(t)

		if err := listDomains(cmd, db); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No scans stored yet") {
			t.Errorf("expected empty-store message, got: %s", buf.String())
		}
	})

	t.Run("lists domains sorted", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		saveReportWithScore(t, db, "example.com", 6.0)
		saveReportWithScore(t, db, "docs.example.com", 8.0)
		cmd, buf := newTestCommand(t)

		if err := listDomains(cmd, db); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Audited domains (2):") {
			t.Errorf("expected domain count, got: %s", output)
		}
		docsIdx := strings.Index(output, "docs.example.com")
		exampleIdx := strings.Index(output, "example.com")
		if docsIdx < 0 || exampleIdx < 0 {
			t.Fatalf("expected both domains in output: %s", output)
		}
		if docsIdx > exampleIdx {
			t.Error("expected domains in ascending order")
		}
	})
}

// TestShowDomainHistory tests the per-domain history path.
func TestShowDomainHistory(t *testing.T) {
	t.Parallel()

	t.Run("no scans for domain", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		cmd, buf := newTestCommand(t)

		if err := showDomainHistory(cmd, db, "example.com", 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No scans stored for example.com.") {
			t.Errorf("expected empty-history message, got: %s", buf.String())
		}
	})

	t.Run("shows scans newest first with scores", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		saveReportWithScore(t, db, "example.com", 5.0)
		saveReportWithScore(t, db, "example.com", 7.5)
		cmd, buf := newTestCommand(t)

		if err := showDomainHistory(cmd, db, "example.com", 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Scan history for example.com (2 shown):") {
			t.Errorf("expected history header, got: %s", output)
		}
		if !strings.Contains(output, "score 7.5/10") {
			t.Errorf("expected latest score, got: %s", output)
		}
		if !strings.Contains(output, "score 5.0/10") {
			t.Errorf("expected previous score, got: %s", output)
		}
		if !strings.Contains(output, "1 high") {
			t.Errorf("expected issue summary, got: %s", output)
		}
		if !strings.Contains(output, "Score is up 2.5 since the previous scan.") {
			t.Errorf("expected trend line, got: %s", output)
		}
		if !strings.Contains(output, "Pillar movement (0-100):") {
			t.Errorf("expected pillar breakdown, got: %s", output)
		}
		if !strings.Contains(output, "machine readability") {
			t.Errorf("expected pillar name, got: %s", output)
		}
		if !strings.Contains(output, "+25.0") {
			t.Errorf("expected pillar delta, got: %s", output)
		}
	})

	t.Run("limit caps shown scans", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		saveReportWithScore(t, db, "example.com", 5.0)
		saveReportWithScore(t, db, "example.com", 6.0)
		saveReportWithScore(t, db, "example.com", 7.0)
		cmd, buf := newTestCommand(t)

		if err := showDomainHistory(cmd, db, "example.com", 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "(1 shown)") {
			t.Errorf("expected one scan shown, got: %s", output)
		}
		if strings.Contains(output, "score 5.0/10") {
			t.Errorf("expected oldest scan to be hidden, got: %s", output)
		}
	})

	t.Run("single scan has no trend", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		saveReportWithScore(t, db, "example.com", 5.0)
		cmd, buf := newTestCommand(t)

		if err := showDomainHistory(cmd, db, "example.com", 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "since the previous scan") {
			t.Error("expected no trend line for a single scan")
		}
	})
}

// TestFormatIssueSummary tests severity count rendering.
func TestFormatIssueSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary map[string]int
		want    string
	}{
		{
			name:    "empty",
			summary: map[string]int{},
			want:    "",
		},
		{
			name:    "single severity",
			summary: map[string]int{"HIGH": 2},
			want:    "2 high",
		},
		{
			name:    "ordered by severity",
			summary: map[string]int{"LOW": 1, "CRITICAL": 3, "MEDIUM": 2},
			want:    "3 critical, 2 medium, 1 low",
		},
		{
			name:    "zero counts skipped",
			summary: map[string]int{"HIGH": 0, "INFO": 4},
			want:    "4 info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatIssueSummary(tt.summary); got != tt.want {
				t.Errorf("formatIssueSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}
