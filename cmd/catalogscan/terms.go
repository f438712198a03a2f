package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/catalogscan/catalogscan/internal/config"
	"github.com/catalogscan/catalogscan/internal/database"
	"github.com/catalogscan/catalogscan/internal/model"
	"github.com/catalogscan/catalogscan/internal/planner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewTermsCmd creates the terms command.
func NewTermsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Show the terms a scrape would process",
		Long: `Terms prints the term plan without contacting the catalog.

With --terms the explicit list is shown as given. Otherwise the plan starts
at the current calendar term and walks backwards --count terms. When a
history database exists, the last recorded status of each term is shown.

Examples:
  catalogscan terms
  catalogscan terms --count 4
  catalogscan terms --terms 2025/fall,2025/winter`,
		Args: cobra.NoArgs,
		RunE: runTermsCmd,
	}

	cmd.Flags().StringP("terms", "T", "",
		"Comma-separated year/term list, e.g. 2025/fall,2025/summer")
	cmd.Flags().IntP("count", "k", config.DefaultTermCount,
		"Number of terms to plan backwards from today")

	return cmd
}

// runTermsCmd executes the terms command.
func runTermsCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("terms") {
		terms, err := flags.GetString("terms")
		if err != nil {
			return err
		}
		cfg.Scrape.Terms = []string{terms}
	}
	if flags.Changed("count") {
		count, err := flags.GetInt("count")
		if err != nil {
			return err
		}
		cfg.Scrape.TermCount = count
	}

	if err := cfg.ValidatePlan(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	explicit, err := cfg.ExplicitTerms()
	if err != nil {
		return err
	}

	plan := planner.Plan(explicit, cfg.Scrape.TermCount, time.Now())
	if len(plan) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No terms planned.")
		return nil
	}

	var db *database.HistoryDB
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	if h, err := database.Open(cfg.HistoryPath(), opts); err == nil {
		db = h
		defer db.Close()
	}

	return renderPlan(cmd.Context(), cmd, plan, db)
}

// renderPlan prints the plan. db may be nil.
func renderPlan(ctx context.Context, cmd *cobra.Command, plan []model.Term, db *database.HistoryDB) error {
	if ctx == nil {
		ctx = context.Background()
	}

	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"#", "Term", "Code", "Name", "Last status"})
	for i, term := range plan {
		code, err := term.Code()
		if err != nil {
			return err
		}
		name, err := term.Name()
		if err != nil {
			return err
		}

		last := "-"
		if db != nil {
			status, ok, err := db.LastTermStatus(ctx, code)
			if err != nil {
				return err
			}
			if ok {
				last = string(status)
			}
		}
		t.AppendRow(table.Row{i + 1, term.String(), code, name, last})
	}
	t.Render()
	return nil
}
