package main

import (
	"context"
	"fmt"

	"github.com/catalogscan/catalogscan/internal/config"
	"github.com/catalogscan/catalogscan/internal/database"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is how many runs the history command lists.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past scrape runs",
		Long: `History lists recorded scrape runs, newest first.

With a run ID, it shows the per-term results of that run instead.

Examples:
  # List the last 20 runs
  catalogscan history

  # Show the terms of one run
  catalogscan history 6f1c2a9e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Maximum number of runs to list")
	cmd.Flags().String("db", "",
		"History database path (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return err
	}
	if dbPath == "" {
		dbPath = config.NewConfig().HistoryPath()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbPath, opts)
	if err != nil {
		return fmt.Errorf("no run history: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 1 {
		return showRun(ctx, cmd, db, args[0])
	}
	return listRuns(ctx, cmd, db, limit)
}

// listRuns prints the most recent runs.
func listRuns(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Run", "Started", "Finished", "Status", "Terms"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.ID, formatTimestamp(r.StartedAt), formatTimestamp(r.FinishedAt), r.Status, r.Terms})
	}
	t.Render()
	return nil
}

// showRun prints the term results of one run.
func showRun(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, runID string) error {
	results, err := db.TermResults(ctx, runID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("%w: %s", database.ErrRunNotFound, runID)
	}
	renderTermResults(cmd.OutOrStdout(), results)
	return nil
}
