package result

import (
	"io"

	"github.com/rodaine/table"
)

// WriteTable writes the records as aligned columns followed by the summary.
func WriteTable(w io.Writer, rep *Report) {
	tbl := table.New("", "Check", "Status", "Code", "Elapsed", "Detail").WithWriter(w)
	for _, rec := range rep.Records {
		tbl.AddRow(Glyph(rec.Status), rec.Label, rec.Status, statusCodeStr(rec.StatusCode), FormatElapsed(rec.Elapsed), rec.Detail)
	}
	tbl.Print()
	PrintSummary(w, rep.Summary)
}
