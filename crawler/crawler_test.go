package crawler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/lukemcguire/sitecheck/crawler"
	"github.com/lukemcguire/sitecheck/result"
)

// newTestServer creates an httptest server with a small static site.
// Site structure:
//
//	/             -> nav: /, about.html, #top, external; images: logo twice, data URI
//	/about.html   -> nav: /; images: /img/missing.png (404)
//	/broken.html  -> 500
//	/img/logo.png -> 200
func newTestServer() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := fmt.Fprint(w, `<html><body>
			<nav>
				<a href="/">Home</a>
				<a href="about.html">About</a>
				<a href="#top">Top</a>
				<a href="https://external.example.com/">External</a>
			</nav>
			<a href="/not-in-nav.html">Body link</a>
			<img src="/img/logo.png"><img src="/img/logo.png"><img src="/img/logo.png">
			<img src="data:image/png;base64,AAAA">
		</body></html>`); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/about.html", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprint(w, `<html><body>
			<nav><a href="/">Home</a></nav>
			<img src="/img/missing.png">
		</body></html>`); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/broken.html", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	mux.HandleFunc("/img/logo.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
	})

	return httptest.NewServer(mux)
}

// mustNewCrawler creates a crawler or fails the test.
func mustNewCrawler(t *testing.T, cfg crawler.Config, progressCh chan<- crawler.CrawlEvent) *crawler.Crawler {
	t.Helper()
	c, err := crawler.New(cfg, progressCh)
	if err != nil {
		t.Fatalf("crawler.New() error: %v", err)
	}
	return c
}

func mustRun(t *testing.T, c *crawler.Crawler) *result.Report {
	t.Helper()
	rep, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	return rep
}

type check struct {
	label  string
	status result.Status
}

func checksOf(rep *result.Report) []check {
	out := make([]check, 0, len(rep.Records))
	for _, rec := range rep.Records {
		out = append(out, check{rec.Label, rec.Status})
	}
	return out
}

// TestCrawlerIntegration verifies page loads, nav link and image checks and
// their order for a two-page site.
func TestCrawlerIntegration(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	c := mustNewCrawler(t, crawler.Config{
		BaseURL: ts.URL,
		Pages:   []string{"", "about.html"},
	}, nil)
	rep := mustRun(t, c)

	want := []check{
		{"Page Load: " + ts.URL, result.StatusPass},
		{"Nav Link: " + ts.URL + " -> /", result.StatusPass},
		{"Nav Link: " + ts.URL + " -> about.html", result.StatusPass},
		{"Image: /img/logo.png", result.StatusPass},
		{"Page Load: " + ts.URL + "/about.html", result.StatusPass},
		{"Nav Link: " + ts.URL + "/about.html -> /", result.StatusPass},
		{"Image: /img/missing.png", result.StatusFail},
	}
	got := checksOf(rep)
	if !slices.Equal(got, want) {
		t.Errorf("records mismatch\ngot:  %v\nwant: %v", got, want)
	}

	if rep.Summary.Total != 7 || rep.Summary.Passed != 6 || rep.Summary.FailedTotal() != 1 {
		t.Errorf("Summary = %+v, want 7 total, 6 passed, 1 failed", rep.Summary)
	}
	if rep.Summary.OK() {
		t.Error("Summary.OK() = true with a missing image")
	}
	if rep.BaseURL != ts.URL {
		t.Errorf("BaseURL = %q, want %q", rep.BaseURL, ts.URL)
	}
	if rep.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestCrawlerRecordDetails(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	rep := mustRun(t, mustNewCrawler(t, crawler.Config{
		BaseURL: ts.URL,
		Pages:   []string{"about.html"},
	}, nil))

	if len(rep.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(rep.Records))
	}

	load := rep.Records[0]
	if load.Detail != "Status: 200" || load.Kind != result.KindPageLoad || load.StatusCode != 200 {
		t.Errorf("page load record = %+v", load)
	}

	nav := rep.Records[1]
	if nav.Detail != "" || nav.Kind != result.KindNavLink || nav.URL != ts.URL+"/" {
		t.Errorf("nav record = %+v", nav)
	}

	img := rep.Records[2]
	if img.Detail != "Status: 404" || img.Category != result.Category4xx || img.URL != ts.URL+"/img/missing.png" {
		t.Errorf("image record = %+v", img)
	}
	if img.Page != "about.html" {
		t.Errorf("image Page = %q, want about.html", img.Page)
	}

	for i := 1; i < len(rep.Records); i++ {
		if rep.Records[i].Elapsed < rep.Records[i-1].Elapsed {
			t.Errorf("elapsed went backwards at record %d", i)
		}
	}
}

// TestCrawlerFailedPageLoad verifies a failing page produces exactly one
// record and no reference checks.
func TestCrawlerFailedPageLoad(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	rep := mustRun(t, mustNewCrawler(t, crawler.Config{
		BaseURL: ts.URL,
		Pages:   []string{"broken.html", "missing.html"},
	}, nil))

	want := []check{
		{"Page Load: " + ts.URL + "/broken.html", result.StatusFail},
		{"Page Load: " + ts.URL + "/missing.html", result.StatusFail},
	}
	if got := checksOf(rep); !slices.Equal(got, want) {
		t.Errorf("records mismatch\ngot:  %v\nwant: %v", got, want)
	}
	if rep.Records[0].Detail != "Status: 500" || rep.Records[0].Category != result.Category5xx {
		t.Errorf("broken page record = %+v", rep.Records[0])
	}
}

// TestCrawlerUnreachableServer verifies every page becomes an ERROR record
// and the run still completes.
func TestCrawlerUnreachableServer(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	rep := mustRun(t, mustNewCrawler(t, crawler.Config{BaseURL: addr}, nil))

	if rep.Summary.Total != 4 || rep.Summary.Errored != 4 {
		t.Fatalf("Summary = %+v, want 4 errored", rep.Summary)
	}
	for _, rec := range rep.Records {
		if rec.Status != result.StatusError {
			t.Errorf("%s: status %s, want ERROR", rec.Label, rec.Status)
		}
		if rec.Detail == "" {
			t.Errorf("%s: missing error detail", rec.Label)
		}
		if rec.StatusCode != 0 {
			t.Errorf("%s: status code %d, want 0", rec.Label, rec.StatusCode)
		}
	}
	if rep.Records[0].Label != "Page Load: "+addr {
		t.Errorf("first label = %q", rep.Records[0].Label)
	}
}

func TestCrawlerEmptyPageList(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	rep := mustRun(t, mustNewCrawler(t, crawler.Config{BaseURL: ts.URL, Pages: []string{}}, nil))

	if rep.Summary.Total != 0 || !rep.Summary.OK() {
		t.Errorf("Summary = %+v, want empty passing run", rep.Summary)
	}
}

// TestCrawlerIdempotent verifies two runs against an unchanged site produce
// the same labels and statuses.
func TestCrawlerIdempotent(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	cfg := crawler.Config{BaseURL: ts.URL, Pages: []string{"", "about.html", "broken.html"}}
	first := checksOf(mustRun(t, mustNewCrawler(t, cfg, nil)))
	second := checksOf(mustRun(t, mustNewCrawler(t, cfg, nil)))

	if !slices.Equal(first, second) {
		t.Errorf("runs differ\nfirst:  %v\nsecond: %v", first, second)
	}
}

// TestCrawlerConcurrentChecks verifies higher concurrency yields the same set
// of outcomes as a sequential run.
func TestCrawlerConcurrentChecks(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	cfg := crawler.Config{BaseURL: ts.URL, Pages: []string{"", "about.html"}}
	sequential := checksOf(mustRun(t, mustNewCrawler(t, cfg, nil)))

	cfg.Concurrency = 8
	concurrent := checksOf(mustRun(t, mustNewCrawler(t, cfg, nil)))

	byLabel := func(a, b check) int { return strings.Compare(a.label, b.label) }
	slices.SortFunc(sequential, byLabel)
	slices.SortFunc(concurrent, byLabel)
	if !slices.Equal(sequential, concurrent) {
		t.Errorf("concurrent run differs\nsequential: %v\nconcurrent: %v", sequential, concurrent)
	}
}

func TestCrawlerProgressEvents(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	progressCh := make(chan crawler.CrawlEvent, 64)
	rep := mustRun(t, mustNewCrawler(t, crawler.Config{
		BaseURL: ts.URL,
		Pages:   []string{"", "about.html"},
	}, progressCh))
	close(progressCh)

	var events []crawler.CrawlEvent
	for evt := range progressCh {
		events = append(events, evt)
	}

	if len(events) != rep.Summary.Total {
		t.Fatalf("got %d events, want %d", len(events), rep.Summary.Total)
	}
	for i, evt := range events {
		if evt.Label != rep.Records[i].Label {
			t.Errorf("event %d label = %q, want %q", i, evt.Label, rep.Records[i].Label)
		}
		if evt.Checked != i+1 {
			t.Errorf("event %d Checked = %d, want %d", i, evt.Checked, i+1)
		}
	}
	last := events[len(events)-1]
	if last.Failed != rep.Summary.FailedTotal() {
		t.Errorf("last event Failed = %d, want %d", last.Failed, rep.Summary.FailedTotal())
	}
}

// TestCrawlerReusedCountersRestart verifies a second Run on the same Crawler
// reports its own progress counters.
func TestCrawlerReusedCountersRestart(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	progressCh := make(chan crawler.CrawlEvent, 64)
	c := mustNewCrawler(t, crawler.Config{BaseURL: ts.URL, Pages: []string{"about.html"}}, progressCh)

	drain := func() []crawler.CrawlEvent {
		var events []crawler.CrawlEvent
		for {
			select {
			case evt := <-progressCh:
				events = append(events, evt)
			default:
				return events
			}
		}
	}

	first := mustRun(t, c)
	drain()
	second := mustRun(t, c)
	events := drain()

	if len(events) != second.Summary.Total {
		t.Fatalf("second run sent %d events, want %d", len(events), second.Summary.Total)
	}
	if events[0].Checked != 1 {
		t.Errorf("second run first event Checked = %d, want 1", events[0].Checked)
	}
	last := events[len(events)-1]
	if last.Checked != second.Summary.Total || last.Failed != second.Summary.FailedTotal() {
		t.Errorf("second run last event = %d checked / %d failed, want %d / %d",
			last.Checked, last.Failed, second.Summary.Total, second.Summary.FailedTotal())
	}
	if first.Summary != second.Summary {
		t.Errorf("summaries differ: first %+v, second %+v", first.Summary, second.Summary)
	}
}

// TestCrawlerFollowsRedirects verifies links and images are judged by the
// final response of a redirect chain. A 3xx without a Location header is the
// final response and fails.
func TestCrawlerFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprint(w, `<nav><a href="/moved.html">Moved</a></nav>
			<img src="/old.png"><img src="/stuck.png">`)
	})
	mux.HandleFunc("/moved.html", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new.html", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<p>new</p>")
	})
	mux.HandleFunc("/old.png", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new.png", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new.png", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/stuck.png", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	rep, err := mustNewCrawler(t, crawler.Config{BaseURL: ts.URL, Pages: []string{""}}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	want := []check{
		{"Page Load: " + ts.URL, result.StatusPass},
		{"Nav Link: " + ts.URL + " -> /moved.html", result.StatusPass},
		{"Image: /old.png", result.StatusPass},
		{"Image: /stuck.png", result.StatusFail},
	}
	if got := checksOf(rep); !slices.Equal(got, want) {
		t.Fatalf("checks = %v, want %v", got, want)
	}

	stuck := rep.Records[3]
	if stuck.StatusCode != http.StatusFound || stuck.Category != result.CategoryRedirect {
		t.Errorf("stuck record = %d / %q, want 302 / %q", stuck.StatusCode, stuck.Category, result.CategoryRedirect)
	}
}

func TestCrawlerCancelled(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := mustNewCrawler(t, crawler.Config{BaseURL: ts.URL}, nil)
	rep, err := c.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if rep == nil {
		t.Fatal("Run() returned nil report on cancellation")
	}
	if rep.Summary.Total != 0 {
		t.Errorf("Total = %d, want 0", rep.Summary.Total)
	}
}

// panickyTransport panics for one path and delegates everything else.
type panickyTransport struct {
	path string
}

func (p panickyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Path == p.path {
		panic("transport exploded")
	}
	return http.DefaultTransport.RoundTrip(req)
}

// TestCrawlerContainsPanics verifies a panicking check becomes an ERROR
// record and the run continues.
func TestCrawlerContainsPanics(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	rep := mustRun(t, mustNewCrawler(t, crawler.Config{
		BaseURL: ts.URL,
		Pages:   []string{"", "about.html"},
		Client:  &http.Client{Transport: panickyTransport{path: "/img/logo.png"}},
	}, nil))

	var logo *result.Record
	for i := range rep.Records {
		if rep.Records[i].Label == "Image: /img/logo.png" {
			logo = &rep.Records[i]
		}
	}
	if logo == nil {
		t.Fatal("no record for the panicking check")
	}
	if logo.Status != result.StatusError || !strings.Contains(logo.Detail, "transport exploded") {
		t.Errorf("panicking check record = %+v", *logo)
	}
	if rep.Summary.Total != 7 {
		t.Errorf("Total = %d, want 7 (run should continue past the panic)", rep.Summary.Total)
	}
}

func TestCrawlerRespectRobots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<nav><a href="/private/admin.html">Admin</a></nav><img src="/private/x.png"><img src="/ok.png">`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	rep := mustRun(t, mustNewCrawler(t, crawler.Config{
		BaseURL:       ts.URL,
		Pages:         []string{""},
		RespectRobots: true,
	}, nil))

	want := []check{
		{"Page Load: " + ts.URL, result.StatusPass},
		{"Image: /ok.png", result.StatusPass},
	}
	if got := checksOf(rep); !slices.Equal(got, want) {
		t.Errorf("records mismatch\ngot:  %v\nwant: %v", got, want)
	}
}

func TestCrawlerPageTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	rep := mustRun(t, mustNewCrawler(t, crawler.Config{
		BaseURL:     ts.URL,
		Pages:       []string{""},
		PageTimeout: 50 * time.Millisecond,
	}, nil))

	if len(rep.Records) != 1 || rep.Records[0].Status != result.StatusError {
		t.Fatalf("records = %+v, want one ERROR", rep.Records)
	}
	if rep.Records[0].Category != result.CategoryTimeout {
		t.Errorf("Category = %q, want timeout", rep.Records[0].Category)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  crawler.Config
	}{
		{"non-http base", crawler.Config{BaseURL: "ftp://example.com"}},
		{"relative base", crawler.Config{BaseURL: "localhost"}},
		{"bad selector", crawler.Config{BaseURL: "http://localhost", NavSelector: "nav a["}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := crawler.New(tt.cfg, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNew_NormalizesBaseURL(t *testing.T) {
	c := mustNewCrawler(t, crawler.Config{BaseURL: "HTTP://Example.COM/"}, nil)
	if got := c.BaseURL(); got != "http://example.com" {
		t.Errorf("BaseURL() = %q, want http://example.com", got)
	}
}
