package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lukemcguire/sitecheck/crawler"
	"github.com/lukemcguire/sitecheck/result"
)

// CheckProgressMsg reports that one more check has been recorded.
type CheckProgressMsg struct {
	Checked int
	Failed  int
	Label   string
	Status  result.Status
}

// CheckDoneMsg signals the run has completed. Report is set even when Err
// reports an interrupted run.
type CheckDoneMsg struct {
	Report *result.Report
	Err    error
}

// waitForProgress returns a tea.Cmd that reads one event from the progress
// channel. A closed channel produces no message; completion comes from
// startRun.
func waitForProgress(ch <-chan crawler.CrawlEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return nil
		}
		return CheckProgressMsg{
			Checked: evt.Checked,
			Failed:  evt.Failed,
			Label:   evt.Label,
			Status:  evt.Status,
		}
	}
}
