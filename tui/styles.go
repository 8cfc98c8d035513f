package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lukemcguire/sitecheck/result"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	cellStyle     = lipgloss.NewStyle()
	passStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// categoryOrder defines the display order for failure categories (most to least actionable).
var categoryOrder = []result.ErrorCategory{
	result.Category4xx,
	result.Category5xx,
	result.CategoryRedirect,
	result.CategoryTimeout,
	result.CategoryDNSFailure,
	result.CategoryConnectionRefused,
	result.CategoryRedirectLoop,
	result.CategoryUnknown,
}

func statusStyle(s result.Status) lipgloss.Style {
	switch s {
	case result.StatusPass:
		return passStyle
	case result.StatusFail:
		return failStyle
	default:
		return warnStyle
	}
}

// RenderReport produces a Lip Gloss styled rendering of a finished run:
// every record in order, the failures grouped by category, then the summary.
func RenderReport(rep *result.Report) string {
	if rep == nil {
		return errorStyle.Render("No results available.")
	}

	var builder strings.Builder

	builder.WriteString(titleStyle.Render("Test Results: " + rep.BaseURL))
	builder.WriteString("\n")
	if len(rep.Records) > 0 {
		builder.WriteString(recordTable(rep.Records).Render())
		builder.WriteString("\n\n")
	}

	failures := rep.Failures()
	grouped := make(map[result.ErrorCategory][]result.Record)
	for _, rec := range failures {
		cat := rec.Category
		if cat == "" {
			cat = result.CategoryUnknown
		}
		grouped[cat] = append(grouped[cat], rec)
	}

	for _, cat := range categoryOrder {
		recs := grouped[cat]
		if len(recs) == 0 {
			continue
		}
		builder.WriteString(categoryStyle.Render(fmt.Sprintf("## %s (%d)", result.FormatCategory(cat), len(recs))))
		builder.WriteString("\n")
		for _, rec := range recs {
			builder.WriteString(failStyle.Render("  " + rec.URL))
			builder.WriteString(dimStyle.Render("  (" + rec.Label + ")"))
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	s := rep.Summary
	if s.OK() {
		builder.WriteString(successStyle.Render(fmt.Sprintf("All %d checks passed!", s.Total)))
	} else {
		builder.WriteString(titleStyle.Render(fmt.Sprintf(
			"%d of %d checks failed", s.FailedTotal(), s.Total)))
	}
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"Total Tests: %d  Passed: %d (%.1f%%)  Failed: %d (%.1f%%)  in %s",
		s.Total,
		s.Passed, s.PassedPercent(),
		s.FailedTotal(), s.FailedPercent(),
		rep.Duration.Round(1_000_000), // round to ms
	)))
	builder.WriteString("\n")

	return builder.String()
}

func recordTable(records []result.Record) *table.Table {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			result.Glyph(rec.Status),
			rec.Label,
			string(rec.Status),
			result.FormatElapsed(rec.Elapsed),
			rec.Detail,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("", "Check", "Status", "Time", "Detail").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 || col == 2 {
				return statusStyle(result.Status(rows[row][2]))
			}
			return cellStyle
		}).
		Rows(rows...)
}
