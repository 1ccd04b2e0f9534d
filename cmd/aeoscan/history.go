package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aeoscan/aeoscan/internal/config"
	"github.com/aeoscan/aeoscan/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "Show stored scan history",
		Long: `History lists the scan reports stored in the local database.

With a domain argument, it shows every stored scan for that domain,
newest first, with the overall score and issue counts at the time of
the scan. Without an argument, it lists all audited domains.

Examples:
  # List all audited domains
  aeoscan history

  # Show the scan history for one domain
  aeoscan history example.com

  # Show only the five most recent scans
  aeoscan history --limit 5 example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of scans to show (0 means all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if len(args) == 0 {
		return listDomains(cmd, db)
	}

	return showDomainHistory(cmd, db, args[0], limit)
}

// listDomains prints every domain with at least one stored scan.
func listDomains(cmd *cobra.Command, db *database.AuditDB) error {
	domains, err := db.ListScannedDomains(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(domains) == 0 {
		fmt.Fprintln(out, "No scans stored yet. Run 'aeoscan scan <domain>' first.")
		return nil
	}

	fmt.Fprintf(out, "Audited domains (%d):\n", len(domains))
	for _, domain := range domains {
		fmt.Fprintf(out, "  %s\n", domain)
	}

	return nil
}

// showDomainHistory prints the stored scans for one domain, newest first.
func showDomainHistory(cmd *cobra.Command, db *database.AuditDB, domain string, limit int) error {
	history, err := db.GetScanHistoryWithMetadata(cmd.Context(), domain)
	if err != nil {
		return fmt.Errorf("failed to load scan history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(history) == 0 {
		fmt.Fprintf(out, "No scans stored for %s.\n", domain)
		return nil
	}

	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}

	fmt.Fprintf(out, "Scan history for %s (%d shown):\n\n", domain, len(history))
	for _, meta := range history {
		fmt.Fprintf(out, "  #%-5d %s  score %.1f/10", meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04"), meta.OverallScore)
		if issues := formatIssueSummary(meta.IssueSummary); issues != "" {
			fmt.Fprintf(out, "  (%s)", issues)
		}
		fmt.Fprintln(out)
	}

	writeTrend(out, history)
	writePillarTrend(cmd, db, out, history)

	return nil
}

// formatIssueSummary renders nonzero severity counts in descending
// severity order.
func formatIssueSummary(summary map[string]int) string {
	var parts []string
	for _, sev := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "INFO"} {
		if count := summary[sev]; count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, strings.ToLower(sev)))
		}
	}
	return strings.Join(parts, ", ")
}

// writePillarTrend prints per-pillar score movement between the two most
// recent scans. Pillar scores live in the stored report rather than the
// metadata row, so the two full reports are loaded individually. Missing
// or unscored reports silently skip the breakdown.
func writePillarTrend(cmd *cobra.Command, db *database.AuditDB, out io.Writer, history []database.ScanReportMetadata) {
	if len(history) < 2 {
		return
	}

	newest, err := db.GetScanReportByID(cmd.Context(), history[0].ID)
	if err != nil || newest == nil || newest.SiteScore == nil {
		return
	}
	previous, err := db.GetScanReportByID(cmd.Context(), history[1].ID)
	if err != nil || previous == nil || previous.SiteScore == nil {
		return
	}

	ids := make([]string, 0, len(newest.SiteScore.PillarScores))
	for id := range newest.SiteScore.PillarScores {
		if _, ok := previous.SiteScore.PillarScores[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	sort.Strings(ids)

	fmt.Fprintln(out, "\nPillar movement (0-100):")
	for _, id := range ids {
		delta := newest.SiteScore.PillarScores[id] - previous.SiteScore.PillarScores[id]
		fmt.Fprintf(out, "  %-28s %+.1f\n", strings.ReplaceAll(id, "_", " "), delta)
	}
}

// writeTrend prints the score movement between the two most recent scans.
func writeTrend(out io.Writer, history []database.ScanReportMetadata) {
	if len(history) < 2 {
		return
	}

	// history is newest first
	delta := history[0].OverallScore - history[1].OverallScore
	switch {
	case delta > 0:
		fmt.Fprintf(out, "\nScore is up %.1f since the previous scan.\n", delta)
	case delta < 0:
		fmt.Fprintf(out, "\nScore is down %.1f since the previous scan.\n", -delta)
	default:
		fmt.Fprintf(out, "\nScore is unchanged since the previous scan.\n")
	}
}
