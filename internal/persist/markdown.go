package persist

import (
	"io"
	"strconv"
	"time"

	"github.com/catalogscan/catalogscan/internal/model"
	"github.com/catalogscan/catalogscan/internal/scrape"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter renders a run summary as GitHub Flavored Markdown.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to w.
func NewMarkdownWriter(w io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: w}
}

// Write renders res.
func (w *MarkdownWriter) Write(res *scrape.RunResult) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, res)
	w.writeAlert(md, res)
	w.writeTerms(md, res)
	w.writeOutcomeChart(md, res)
	w.writeIndex(md, res)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by catalogscan at %s*", res.FinishedAt.UTC().Format(time.RFC3339))

	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, res *scrape.RunResult) {
	md.H1("Catalog Scrape Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + res.RunID + "`"},
			{"Started", res.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", res.FinishedAt.Sub(res.StartedAt).Round(time.Second).String()},
			{"Terms", strconv.Itoa(len(res.Terms))},
			{"Datasets written", strconv.Itoa(len(res.Index))},
			{"Status", runStatus(res)},
		},
	})
	md.PlainText("")
}

func runStatus(res *scrape.RunResult) string {
	if res.Aborted {
		return "Aborted (partial results)"
	}
	return "Complete"
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, res *scrape.RunResult) {
	advisories := 0
	for _, tr := range res.Terms {
		if tr.Advisory {
			advisories++
		}
	}

	switch {
	case res.Aborted:
		md.Cautionf("The run stopped early. The last term's dataset is partial; run the scrape again later.")
	case advisories > 0:
		md.Warningf("The catalog rate limited %d term(s). Lower the concurrency or raise the request delay.", advisories)
	default:
		md.Tip("All planned terms were processed.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeTerms(md *markdown.Markdown, res *scrape.RunResult) {
	md.H2("Terms")
	md.PlainText("")

	if len(res.Terms) == 0 {
		md.PlainText("No terms were processed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(res.Terms))
	for _, tr := range res.Terms {
		rows = append(rows, []string{
			tr.Name,
			tr.Code,
			string(tr.Status),
			strconv.Itoa(tr.Discovered),
			strconv.Itoa(tr.Succeeded),
			strconv.Itoa(tr.Failed),
			strconv.Itoa(tr.RateLimited),
			strconv.Itoa(tr.HardBlocked),
			strconv.FormatInt(tr.Requests, 10),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Term", "Code", "Status", "Discovered", "Stored", "Failed", "429", "403", "Requests"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, tr := range res.Terms {
		if tr.Error != "" {
			md.Details(tr.Name, tr.Error)
		}
	}
}

func (w *MarkdownWriter) writeOutcomeChart(md *markdown.Markdown, res *scrape.RunResult) {
	var stored, rateLimited, blocked, skipped, other int
	for _, tr := range res.Terms {
		stored += tr.Succeeded
		rateLimited += tr.RateLimited
		blocked += tr.HardBlocked
		skipped += tr.Skipped
		other += tr.Failed - tr.RateLimited - tr.HardBlocked - tr.Skipped
	}
	if stored+rateLimited+blocked+skipped+other == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Course Outcomes"),
		piechart.WithShowData(true),
	)
	for _, slice := range []struct {
		label string
		n     int
	}{
		{model.OutcomeSuccess.String(), stored},
		{model.OutcomeSoftRateLimited.String(), rateLimited},
		{model.OutcomeHardBlocked.String(), blocked},
		{model.OutcomeSkipped.String(), skipped},
		{model.OutcomeOtherFailure.String(), other},
	} {
		if slice.n > 0 {
			chart.LabelAndIntValue(slice.label, uint64(slice.n))
		}
	}

	md.H2("Outcomes")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeIndex(md *markdown.Markdown, res *scrape.RunResult) {
	md.H2("Datasets")
	md.PlainText("")
	if len(res.Index) == 0 {
		md.PlainText("No datasets were written.")
		md.PlainText("")
		return
	}

	digests := make(map[string]string, len(res.Terms))
	for _, tr := range res.Terms {
		digests[tr.Code] = tr.Digest
	}
	rows := make([][]string, 0, len(res.Index))
	for _, e := range res.Index {
		rows = append(rows, []string{e.TermCode + ".json", e.TermName, "`" + shortDigest(digests[e.TermCode]) + "`"})
	}
	rows = append(rows, []string{IndexFile, "-", "`" + shortDigest(res.IndexDigest) + "`"})
	md.Table(markdown.TableSet{
		Header: []string{"File", "Term", "SHA3-256"},
		Rows:   rows,
	})
	md.PlainText("")
}

func shortDigest(d string) string {
	if len(d) <= 16 {
		return d
	}
	return d[:16]
}
