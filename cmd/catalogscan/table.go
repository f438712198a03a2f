package main

import (
	"fmt"
	"io"
	"time"

	"github.com/catalogscan/catalogscan/internal/model"
	"github.com/jedib0t/go-pretty/v6/table"
)

// newTable returns a table writer rendering to w in the CLI's style.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// renderTermResults prints one row per term of a run.
func renderTermResults(w io.Writer, results []model.TermResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No terms processed.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Term", "Code", "Status", "Courses", "OK", "Failed", "429", "403", "Skipped", "Time"})
	for _, r := range results {
		t.AppendRow(table.Row{
			r.Name, r.Code, r.Status,
			r.Discovered, r.Succeeded, r.Failed, r.RateLimited, r.HardBlocked, r.Skipped,
			r.Duration.Round(time.Second),
		})
	}
	t.Render()
}

// formatTimestamp renders a history timestamp, or "-" when unset.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
