// Package result holds the outcome records of a site check, the append-only
// log they are collected in, and the writers that render a finished report.
package result

import (
	"sync"
	"time"
)

// Status is the verdict of a single check.
type Status string

const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"
	StatusError Status = "ERROR"
)

// RecordKind tells which stage of a page check produced a record.
type RecordKind string

const (
	KindPageLoad RecordKind = "page_load"
	KindNavLink  RecordKind = "nav_link"
	KindImage    RecordKind = "image"
)

// Record is one checked item. Records are never changed once appended.
type Record struct {
	Label      string        `json:"label"`       // Human-readable description of what was checked
	Status     Status        `json:"status"`      // PASS, FAIL or ERROR
	Detail     string        `json:"detail"`      // Optional status line or error message
	Elapsed    time.Duration `json:"elapsed_ns"`  // Time since the run started
	Kind       RecordKind    `json:"kind"`        // Stage that produced the record
	Page       string        `json:"page"`        // Configured page path the check belongs to
	URL        string        `json:"url"`         // URL that was fetched
	StatusCode int           `json:"status_code"` // HTTP status code (0 if unreachable)
	Category   ErrorCategory `json:"error_type"`  // Classification for FAIL and ERROR records
}

// Passed reports whether the record counts towards the passed total.
func (r Record) Passed() bool {
	return r.Status == StatusPass
}

// StatusFor maps a fetch outcome onto a Status: a transport error is ERROR,
// a completed request is PASS only for 200 and FAIL otherwise.
func StatusFor(statusCode int, err error) Status {
	switch {
	case err != nil:
		return StatusError
	case statusCode == 200:
		return StatusPass
	default:
		return StatusFail
	}
}

// Log is the ordered, append-only sequence of records for one run.
// Appends are serialized so concurrent checks never lose a record.
type Log struct {
	mu      sync.Mutex
	start   time.Time
	records []Record
}

// NewLog creates an empty log whose elapsed clock starts at start.
func NewLog(start time.Time) *Log {
	return &Log{start: start}
}

// Append stamps rec with the elapsed time since start and appends it.
// It returns the stamped record.
func (l *Log) Append(rec Record) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec.Elapsed = time.Since(l.start)
	l.records = append(l.records, rec)
	return rec
}

// Records returns a copy of the records in insertion order.
func (l *Log) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Summary contains the counts derived from a log at report time.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`  // FAIL records only
	Errored int `json:"errored"` // ERROR records only
}

// Summarize counts records by status.
func Summarize(records []Record) Summary {
	var s Summary
	for _, rec := range records {
		s.Total++
		switch rec.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		default:
			s.Errored++
		}
	}
	return s
}

// FailedTotal is the number of records that count against the verdict.
func (s Summary) FailedTotal() int {
	return s.Failed + s.Errored
}

// OK reports whether the run passed.
func (s Summary) OK() bool {
	return s.FailedTotal() == 0
}

// ExitCode returns the process exit code for the verdict.
func (s Summary) ExitCode() int {
	if s.OK() {
		return 0
	}
	return 1
}

// PassedPercent returns the share of passed records, 0 for an empty run.
func (s Summary) PassedPercent() float64 {
	return percent(s.Passed, s.Total)
}

// FailedPercent returns the share of FAIL and ERROR records, 0 for an empty run.
func (s Summary) FailedPercent() float64 {
	return percent(s.FailedTotal(), s.Total)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Report is the complete output of one run.
type Report struct {
	RunID     string        `json:"run_id"`
	BaseURL   string        `json:"base_url"`
	Pages     []string      `json:"pages"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Records   []Record      `json:"records"`
	Summary   Summary       `json:"summary"`
}

// Failures returns the FAIL and ERROR records in log order.
func (r *Report) Failures() []Record {
	var out []Record
	for _, rec := range r.Records {
		if !rec.Passed() {
			out = append(out, rec)
		}
	}
	return out
}
