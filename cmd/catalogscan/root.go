package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for catalogscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogscan",
		Short: "Polite term-by-term course catalog scraper",
		Long: `catalogscan indexes a university course catalog one term at a time.

For each term it lists the subjects, lists every course in each subject and
fetches the course detail pages over a small paced worker pool. The results
are written as one JSON dataset per term, plus an index.json naming every
dataset produced.

The run stops at the first hard block (HTTP 403) from the catalog, keeps
whatever was collected for the current term and exits non-zero.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	// Add subcommands
	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewTermsCmd())
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
