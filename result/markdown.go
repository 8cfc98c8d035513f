package result

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// WriteMarkdown writes the report as GitHub Flavored Markdown: a header
// table, the summary with a status pie chart, an alert, and every record.
func WriteMarkdown(w io.Writer, rep *Report) error {
	md := markdown.NewMarkdown(w)

	md.H1("Site Check Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base URL", "`" + rep.BaseURL + "`"},
			{"Run ID", "`" + rep.RunID + "`"},
			{"Started", rep.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", rep.Duration.Round(1_000_000).String()},
			{"Pages", strconv.Itoa(len(rep.Pages))},
		},
	})
	md.PlainText("")

	writeMarkdownSummary(md, rep.Summary)
	writeMarkdownRecords(md, rep.Records)

	if err := md.Build(); err != nil {
		return fmt.Errorf("write markdown output: %w", err)
	}
	return nil
}

func writeMarkdownSummary(md *markdown.Markdown, s Summary) {
	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count", "Share"},
		Rows: [][]string{
			{"✓ Passed", strconv.Itoa(s.Passed), fmt.Sprintf("%.1f%%", s.PassedPercent())},
			{"✗ Failed", strconv.Itoa(s.Failed), fmt.Sprintf("%.1f%%", percent(s.Failed, s.Total))},
			{"✗ Errors", strconv.Itoa(s.Errored), fmt.Sprintf("%.1f%%", percent(s.Errored, s.Total))},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**", ""},
		},
	})
	md.PlainText("")

	if s.Total > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Check Outcomes"),
			piechart.WithShowData(true),
		)
		if s.Passed > 0 {
			chart.LabelAndIntValue("PASS", uint64(s.Passed))
		}
		if s.Failed > 0 {
			chart.LabelAndIntValue("FAIL", uint64(s.Failed))
		}
		if s.Errored > 0 {
			chart.LabelAndIntValue("ERROR", uint64(s.Errored))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case s.Errored > 0:
		md.Cautionf("%d check(s) could not complete. The target may be unreachable.", s.Errored)
	case s.Failed > 0:
		md.Warningf("%d check(s) returned a non-200 status.", s.Failed)
	default:
		md.Tip("Every checked resource returned 200.")
	}
	md.PlainText("")
}

func writeMarkdownRecords(md *markdown.Markdown, records []Record) {
	md.H2("Results")
	md.PlainText("")
	if len(records) == 0 {
		md.PlainText("No checks were run.")
		return
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			Glyph(rec.Status),
			rec.Label,
			string(rec.Status),
			FormatElapsed(rec.Elapsed),
			rec.Detail,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"", "Check", "Status", "Elapsed", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}
