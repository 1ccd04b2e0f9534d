package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/aeoscan/aeoscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	return w.WriteSummary(model.NewScanSummary(report))
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.ScanSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeScores(md, summary)
	w.writeSeveritySummary(md, summary)
	w.writeIssues(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H1("AEO Audit Report")
	md.PlainText("")

	siteType := summary.SiteType
	if siteType == "" {
		siteType = "-"
	}

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Domain", "`" + summary.Domain + "`"},
			{"Scan Date", summary.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Site Type", siteType},
			{"Pages Crawled", strconv.Itoa(summary.PagesCrawled)},
			{"Pages Blocked", strconv.Itoa(summary.PagesBlocked)},
			{"Status", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on scan state.
func (w *MarkdownWriter) getStatusText(summary *model.ScanSummary) string {
	if summary.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if summary.Error != "" {
		return "❌ Error - " + summary.Error
	}
	return "✅ Complete"
}

// writeScores writes the overall and pillar score section.
func (w *MarkdownWriter) writeScores(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H2("Scores")
	md.PlainText("")

	overall := fmt.Sprintf("**%.1f / 10.0**", summary.OverallScore)
	if summary.Capped {
		overall += " (capped by severity)"
	}
	md.PlainText("Overall: " + overall)
	if summary.RubricVersion != "" {
		md.PlainText("")
		md.PlainText("Rubric version: `" + summary.RubricVersion + "`")
	}
	md.PlainText("")

	if len(summary.PillarScores) == 0 {
		return
	}

	rows := make([][]string, 0, len(summary.PillarScores))
	for _, id := range sortedKeys(summary.PillarScores) {
		rows = append(rows, []string{
			displayName(id),
			fmt.Sprintf("%.1f", summary.PillarScores[id]),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Pillar", "Score (0-100)"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSeveritySummary writes the severity summary section.
func (w *MarkdownWriter) writeSeveritySummary(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H2("Severity Summary")
	md.PlainText("")

	// Summary table
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(summary.CriticalCount)},
			{"🟠 High", strconv.Itoa(summary.HighCount)},
			{"🟡 Medium", strconv.Itoa(summary.MediumCount)},
			{"🔵 Low", strconv.Itoa(summary.LowCount)},
			{"⚪ Info", strconv.Itoa(summary.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(summary.TotalIssues()) + "**"},
		},
	})
	md.PlainText("")

	// Add pie chart if there are issues
	if summary.HasIssues() {
		w.writePieChart(md, summary)
	}

	// Add alert based on severity
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.ScanSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)

	if summary.CriticalCount > 0 {
		chart.LabelAndIntValue("Critical", uint64(summary.CriticalCount))
	}
	if summary.HighCount > 0 {
		chart.LabelAndIntValue("High", uint64(summary.HighCount))
	}
	if summary.MediumCount > 0 {
		chart.LabelAndIntValue("Medium", uint64(summary.MediumCount))
	}
	if summary.LowCount > 0 {
		chart.LabelAndIntValue("Low", uint64(summary.LowCount))
	}
	if summary.InfoCount > 0 {
		chart.LabelAndIntValue("Info", uint64(summary.InfoCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.ScanSummary) {
	switch {
	case summary.CriticalCount > 0:
		md.Cautionf(
			"Critical issues detected! %d critical issue(s) block answer-engine visibility entirely.",
			summary.CriticalCount,
		)
	case summary.HighCount > 0:
		md.Warningf(
			"High severity issues detected. %d issue(s) suppress answer-engine visibility.",
			summary.HighCount,
		)
	case summary.MediumCount > 0:
		md.Importantf(
			"Medium severity issues found. %d issue(s) reduce the chance of being cited.",
			summary.MediumCount,
		)
	case summary.TotalIssues() > 0:
		md.Note("Only low severity and informational issues detected.")
	default:
		md.Tip("No significant issues detected.")
	}
	md.PlainText("")
}

// writeIssues writes all issues grouped by severity.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H2("Issues")
	md.PlainText("")

	if !summary.HasIssues() {
		md.PlainText("No issues detected.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityInfo, "### ⚪ Info"},
	}

	for _, sev := range severities {
		issues := summary.IssuesBySeverity(sev.level)
		if len(issues) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeIssuesTable(md, issues)
	}
}

// writeIssuesTable writes a table of issues with details.
func (w *MarkdownWriter) writeIssuesTable(md *markdown.Markdown, issues []model.Issue) {
	headers := []string{"Code", "Message", "Location", "Recommendation"}

	rows := make([][]string, len(issues))
	for i, issue := range issues {
		location := issue.Location
		if location == "" {
			location = "-"
		}
		rec := model.GetIssueInfo(issue.Code).Recommendation
		if rec == "" {
			rec = "-"
		}

		rows[i] = []string{
			"`" + issue.Code + "`",
			truncateString(issue.Message, 60),
			truncateString(location, 40),
			truncateString(rec, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")

	// Add impact details for all issues
	seen := make(map[string]bool)
	for _, issue := range issues {
		if seen[issue.Code] {
			continue
		}
		seen[issue.Code] = true
		if impact := model.GetIssueInfo(issue.Code).Impact; impact != "" {
			md.Details(displayName(issue.Code), impact)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [aeoscan](https://github.com/aeoscan/aeoscan)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
