package crawler

import "github.com/lukemcguire/sitecheck/result"

// CrawlEvent reports progress after a single check is recorded.
type CrawlEvent struct {
	Label   string
	URL     string
	Kind    result.RecordKind
	Status  result.Status
	Detail  string
	Checked int // Records so far, including this one
	Failed  int // FAIL and ERROR records so far
}
