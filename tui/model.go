// Package tui provides the Bubble Tea terminal UI for sitecheck,
// displaying live check progress and a styled report of the results.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lukemcguire/sitecheck/crawler"
	"github.com/lukemcguire/sitecheck/result"
)

// recentLimit is how many completed checks stay visible under the spinner.
const recentLimit = 5

// Runner runs a site check. *crawler.Crawler satisfies it.
type Runner interface {
	Run(ctx context.Context) (*result.Report, error)
}

// Model is the Bubble Tea model for the site check TUI.
type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	runner     Runner
	spinner    spinner.Model
	progressCh <-chan crawler.CrawlEvent

	checked  int
	failed   int
	recent   []CheckProgressMsg
	quitting bool
	done     bool
	report   *result.Report
	err      error
	width    int
}

// NewModel creates a TUI model wired to the given runner and progress channel.
func NewModel(ctx context.Context, cancel context.CancelFunc, runner Runner, progressCh <-chan crawler.CrawlEvent) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		ctx:        ctx,
		cancel:     cancel,
		runner:     runner,
		spinner:    spin,
		progressCh: progressCh,
	}
}

// Init starts the spinner, the run, and progress listener concurrently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun(), waitForProgress(m.progressCh))
}

// startRun returns a tea.Cmd that runs the checks and sends CheckDoneMsg.
func (m Model) startRun() tea.Cmd {
	return func() tea.Msg {
		rep, err := m.runner.Run(m.ctx)
		return CheckDoneMsg{Report: rep, Err: err}
	}
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.quitting {
				return m, tea.Quit
			}
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			// The run returns its partial report once cancelled.
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case CheckProgressMsg:
		m.checked = msg.Checked
		m.failed = msg.Failed
		m.recent = append(m.recent, msg)
		if len(m.recent) > recentLimit {
			m.recent = m.recent[len(m.recent)-recentLimit:]
		}
		return m, waitForProgress(m.progressCh)

	case CheckDoneMsg:
		m.done = true
		m.report = msg.Report
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done {
		var b strings.Builder
		if m.report != nil {
			b.WriteString(RenderReport(m.report))
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
			b.WriteString("\n")
		}
		return b.String()
	}

	var b strings.Builder
	verb := "Checking"
	if m.quitting {
		verb = "Stopping"
	}
	fmt.Fprintf(&b, "%s %s... %d checks, %d failed\n", m.spinner.View(), verb, m.checked, m.failed)
	for _, p := range m.recent {
		line := fmt.Sprintf("  %s %s", result.Glyph(p.Status), p.Label)
		if m.width > 0 {
			line = truncate(line, m.width)
		}
		b.WriteString(statusStyle(p.Status).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// Failed reports whether the finished run has any FAIL or ERROR records.
func (m Model) Failed() bool {
	return m.report != nil && !m.report.Summary.OK()
}

// Report returns the finished report, or nil while the run is in progress.
func (m Model) Report() *result.Report {
	return m.report
}

// Err returns the error the run finished with, if any.
func (m Model) Err() error {
	return m.err
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
