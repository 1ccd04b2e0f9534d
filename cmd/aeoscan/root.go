// Package main provides the entry point for the aeoscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for aeoscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aeoscan",
		Short: "Answer-engine-optimization audit tool for websites",
		Long: `aeoscan audits websites for answer-engine optimization (AEO).
It crawls a site while honoring robots.txt, extracts structured-data and
content signals from every page, and scores them against a weighted rubric.

Scan results and redacted evidence are stored locally so scores can be
compared across runs and findings can be traced back to the content that
produced them.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewPurgeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
