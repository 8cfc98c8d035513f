package result

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
)

// WriteJSON writes the whole report as an indented JSON object.
func WriteJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// csvRow is the flat CSV shape of a Record.
type csvRow struct {
	Status     string `csv:"status"`
	Kind       string `csv:"kind"`
	Page       string `csv:"page"`
	Label      string `csv:"label"`
	URL        string `csv:"url"`
	StatusCode string `csv:"status_code"`
	ErrorType  string `csv:"error_type"`
	Detail     string `csv:"detail"`
	Elapsed    string `csv:"elapsed"`
}

// WriteCSV writes one row per record, in log order, with a header row.
// Column order: status, kind, page, label, url, status_code, error_type, detail, elapsed
func WriteCSV(w io.Writer, records []Record) error {
	rows := make([]*csvRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, &csvRow{
			Status:     string(rec.Status),
			Kind:       string(rec.Kind),
			Page:       rec.Page,
			Label:      rec.Label,
			URL:        rec.URL,
			StatusCode: statusCodeStr(rec.StatusCode),
			ErrorType:  string(rec.Category),
			Detail:     rec.Detail,
			Elapsed:    FormatElapsed(rec.Elapsed),
		})
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv output: %w", err)
	}
	return nil
}

// statusCodeStr converts an HTTP status code to a string.
// Returns empty string for 0 (no HTTP status).
func statusCodeStr(code int) string {
	if code == 0 {
		return ""
	}
	return strconv.Itoa(code)
}
