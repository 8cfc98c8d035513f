package result

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

const (
	glyphPass = "✓"
	glyphFail = "✗"
	rule      = "=================================================="
)

// PrintOptions controls the plain-text report.
type PrintOptions struct {
	Color bool // Wrap glyphs and statuses in ANSI colour codes
}

// Glyph returns the check mark for PASS and the cross for FAIL and ERROR.
func Glyph(s Status) string {
	if s == StatusPass {
		return glyphPass
	}
	return glyphFail
}

// FormatElapsed renders an elapsed duration in seconds with two decimals.
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// FormatRecord renders one record as a report line:
//
//	[✓] Page Load: http://localhost:8000 - PASS - 0.01s Status: 200
func FormatRecord(rec Record, opts PrintOptions) string {
	glyph := Glyph(rec.Status)
	status := string(rec.Status)
	if opts.Color {
		c := statusColor(rec.Status)
		glyph = c.Sprint(glyph)
		status = c.Sprint(status)
	}

	line := fmt.Sprintf("[%s] %s - %s - %s", glyph, rec.Label, status, FormatElapsed(rec.Elapsed))
	if rec.Detail != "" {
		line += " " + rec.Detail
	}
	return line
}

func statusColor(s Status) *color.Color {
	var c *color.Color
	switch s {
	case StatusPass:
		c = color.New(color.FgGreen)
	case StatusFail:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.FgYellow)
	}
	// EnableColor overrides color.NoColor for this value only.
	c.EnableColor()
	return c
}

// PrintReport writes every record in log order followed by the summary.
func PrintReport(w io.Writer, rep *Report, opts PrintOptions) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	writef("Test Results:\n%s\n", rule)
	for _, rec := range rep.Records {
		writef("%s\n", FormatRecord(rec, opts))
	}
	PrintSummary(w, rep.Summary)
	writef("%s\n", rule)
}

// PrintSummary writes the total, passed and failed counts with percentages.
// Failed includes ERROR records.
func PrintSummary(w io.Writer, s Summary) {
	var b strings.Builder
	b.WriteString("\nSummary:\n")
	fmt.Fprintf(&b, "Total Tests: %d\n", s.Total)
	fmt.Fprintf(&b, "Passed: %d (%.1f%%)\n", s.Passed, s.PassedPercent())
	fmt.Fprintf(&b, "Failed: %d (%.1f%%)\n", s.FailedTotal(), s.FailedPercent())
	_, _ = io.WriteString(w, b.String())
}
