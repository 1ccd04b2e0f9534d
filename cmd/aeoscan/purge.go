package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aeoscan/aeoscan/internal/config"
	"github.com/aeoscan/aeoscan/internal/database"
	"github.com/aeoscan/aeoscan/internal/evidence"
	"github.com/aeoscan/aeoscan/internal/log"
)

// NewPurgeCmd creates the purge command.
func NewPurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Strip expired evidence excerpts from the local store",
		Long: `Purge runs the evidence retention job against the local database.

Full-mode evidence records older than the retention window have their
stored excerpt removed. The content hash, redaction counts, and original
length are preserved so past findings remain verifiable. Extract-only
records carry no readable content and are never modified.

Every run is appended to the retention audit log, including dry runs.

The retention window defaults to ` + fmt.Sprint(evidence.DefaultRetentionDays) + ` days and can also be set with
the ` + config.RetentionDaysEnv + ` environment variable.

Examples:
  # Purge evidence older than the configured retention window
  aeoscan purge

  # Preview what a 60-day window would purge without changing anything
  aeoscan purge --days 60 --dry-run

  # Show retention statistics for the evidence store
  aeoscan purge --stats`,
		Args: cobra.NoArgs,
		RunE: runPurgeCmd,
	}

	cmd.Flags().Int("days", 0,
		fmt.Sprintf("Retention window in days (default: %s or %d)",
			config.RetentionDaysEnv, evidence.DefaultRetentionDays))
	cmd.Flags().Bool("dry-run", false,
		"Report what would be purged without modifying the store")
	cmd.Flags().Bool("stats", false,
		"Print retention statistics instead of purging")

	return cmd
}

// runPurgeCmd executes the purge command.
func runPurgeCmd(cmd *cobra.Command, _ []string) error {
	days, err := cmd.Flags().GetInt("days")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	statsOnly, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return err
	}

	if days <= 0 {
		days = config.RetentionDaysFromEnv()
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	purger := evidence.NewPurger(db, evidence.WithLogger(logger))

	if statsOnly {
		return printRetentionStats(cmd, purger)
	}

	return runPurge(cmd, purger, logger, days, dryRun)
}

// runPurge executes the retention job and prints its outcome.
func runPurge(cmd *cobra.Command, purger *evidence.Purger, logger *slog.Logger, days int, dryRun bool) error {
	out := cmd.OutOrStdout()

	if dryRun {
		fmt.Fprintf(out, "Dry run: evidence older than %d days\n\n", days)
	} else {
		fmt.Fprintf(out, "Purging evidence older than %d days\n\n", days)
	}

	result := purger.RunJob(cmd.Context(), evidence.RetentionConfig{
		RetentionDays: days,
		DryRun:        dryRun,
	})

	if dryRun {
		fmt.Fprintf(out, "Would purge: %d record(s)\n", result.Purged)
	} else {
		fmt.Fprintf(out, "Purged:      %d record(s)\n", result.Purged)
	}
	fmt.Fprintf(out, "Kept:        %d extract-only record(s)\n", result.Kept)
	if result.Errors > 0 {
		fmt.Fprintf(out, "Errors:      %d record(s) skipped\n", result.Errors)
	}

	if !result.Success {
		logger.Error("retention job failed", "error", result.Error)
		return fmt.Errorf("retention job failed: %s", result.Error)
	}

	return nil
}

// printRetentionStats prints the evidence store's retention posture.
func printRetentionStats(cmd *cobra.Command, purger *evidence.Purger) error {
	stats, err := purger.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to compute retention stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Evidence retention statistics\n\n")
	fmt.Fprintf(out, "Total records:       %d\n", stats.Total)
	fmt.Fprintf(out, "  full mode:         %d\n", stats.FullMode)
	fmt.Fprintf(out, "  extract-only mode: %d\n", stats.ExtractOnlyMode)
	fmt.Fprintf(out, "Older than 30 days:  %d\n", stats.OlderThan30Days)
	fmt.Fprintf(out, "Older than 60 days:  %d\n", stats.OlderThan60Days)
	fmt.Fprintf(out, "Older than 90 days:  %d\n", stats.OlderThan90Days)

	return nil
}
