// Package crawler checks a fixed list of pages on a site. Each page is loaded,
// its navigation links and images are extracted, and every same-origin
// reference is requested once per page. Outcomes go to a result.Log in the
// order they complete.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lukemcguire/sitecheck/result"
	"github.com/lukemcguire/sitecheck/urlutil"
)

// ResourceRef is a reference discovered on a page, ready to be checked.
type ResourceRef struct {
	Page  string            // Configured page path the reference was found on
	Raw   string            // Attribute value as written in the markup
	URL   string            // Resolved absolute URL
	Kind  result.RecordKind // KindNavLink or KindImage
	Label string
}

// Method returns the HTTP method used to check the reference. Images are
// probed with HEAD; navigation targets are fetched in full.
func (r ResourceRef) Method() string {
	if r.Kind == result.KindImage {
		return http.MethodHead
	}
	return http.MethodGet
}

// Crawler runs the page checks described by a Config.
type Crawler struct {
	cfg        Config
	baseURL    string
	fetcher    *Fetcher
	extractor  *Extractor
	robots     *RobotsChecker
	logger     *slog.Logger
	progressCh chan<- CrawlEvent
}

// run holds the state of a single Run: the result log and the running
// counters reported in progress events.
type run struct {
	log *result.Log

	mu      sync.Mutex
	checked int
	failed  int
}

// New creates a Crawler with the given configuration.
// The progressCh parameter is optional; pass nil to disable progress events.
func New(cfg Config, progressCh chan<- CrawlEvent) (*Crawler, error) {
	cfg = cfg.withDefaults()

	baseURL, err := urlutil.NormalizeBase(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("normalize base URL: %w", err)
	}

	extractor, err := NewExtractor(cfg.NavSelector)
	if err != nil {
		return nil, err
	}

	c := &Crawler{
		cfg:        cfg,
		baseURL:    baseURL,
		fetcher:    NewFetcher(cfg.Client, cfg.UserAgent, cfg.MaxBodySize, cfg.Logger),
		extractor:  extractor,
		logger:     cfg.Logger,
		progressCh: progressCh,
	}
	if cfg.RespectRobots {
		c.robots = NewRobotsChecker(cfg.Client, cfg.UserAgent)
	}
	return c, nil
}

// BaseURL returns the normalized site root the crawler checks against.
func (c *Crawler) BaseURL() string {
	return c.baseURL
}

// Run checks every configured page in order and returns the report.
// If ctx is cancelled the remaining pages are skipped and the partial report
// is returned together with the context error.
func (c *Crawler) Run(ctx context.Context) (*result.Report, error) {
	start := time.Now()
	r := &run{log: result.NewLog(start)}

	c.logger.Info("starting site check",
		slog.String("base_url", c.baseURL),
		slog.Int("pages", len(c.cfg.Pages)),
		slog.Int("concurrency", c.cfg.Concurrency))

	var runErr error
	for _, page := range c.cfg.Pages {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("site check interrupted: %w", err)
			break
		}
		c.checkPage(ctx, r, page)
	}

	records := r.log.Records()
	report := &result.Report{
		RunID:     uuid.NewString(),
		BaseURL:   c.baseURL,
		Pages:     append([]string(nil), c.cfg.Pages...),
		StartedAt: start,
		Duration:  time.Since(start),
		Records:   records,
		Summary:   result.Summarize(records),
	}

	c.logger.Info("site check finished",
		slog.Int("total", report.Summary.Total),
		slog.Int("passed", report.Summary.Passed),
		slog.Int("failed", report.Summary.FailedTotal()),
		slog.Duration("duration", report.Duration))

	return report, runErr
}

// checkPage loads one page and, if the load passed, checks its references.
// A failed load records exactly one entry and nothing else for the page.
func (c *Crawler) checkPage(ctx context.Context, r *run, page string) {
	pageURL := urlutil.PageURL(c.baseURL, page)
	base := result.Record{
		Label: "Page Load: " + pageURL,
		Kind:  result.KindPageLoad,
		Page:  page,
		URL:   pageURL,
	}

	var out FetchOutcome
	rec := c.record(ctx, r, c.safely(base, func() result.Record {
		out = c.fetcher.Fetch(ctx, pageURL, http.MethodGet, c.cfg.PageTimeout)
		return outcomeRecord(base, out, true)
	}))
	if !rec.Passed() {
		c.logger.Warn("page load failed",
			slog.String("page", pageURL),
			slog.String("status", string(rec.Status)),
			slog.String("detail", rec.Detail))
		return
	}

	refs := c.collectRefs(ctx, page, pageURL, out.Body, out.ContentType)

	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)
	for _, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			c.checkResource(ctx, r, ref)
			return nil
		})
	}
	_ = g.Wait()
}

// collectRefs extracts nav links then images, each in lexical order, and
// drops the kinds that are never checked.
func (c *Crawler) collectRefs(ctx context.Context, page, pageURL string, body []byte, contentType string) []ResourceRef {
	var refs []ResourceRef

	add := func(raw string, kind result.RecordKind, label string) {
		target, refKind := urlutil.Resolve(c.baseURL, page, raw)
		if refKind.Skip() {
			c.logger.Debug("skipping reference",
				slog.String("page", pageURL),
				slog.String("ref", raw),
				slog.String("reason", refKind.String()))
			return
		}
		if c.robots != nil {
			allowed, err := c.robots.Allowed(ctx, target)
			if err != nil {
				c.logger.Debug("robots.txt unavailable", slog.String("url", target), slog.Any("error", err))
			}
			if !allowed {
				c.logger.Info("skipping reference disallowed by robots.txt", slog.String("url", target))
				return
			}
		}
		refs = append(refs, ResourceRef{Page: page, Raw: raw, URL: target, Kind: kind, Label: label})
	}

	for _, href := range sortedRefs(c.extractor.ExtractNavLinks(body, contentType)) {
		add(href, result.KindNavLink, fmt.Sprintf("Nav Link: %s -> %s", pageURL, href))
	}
	for _, src := range sortedRefs(c.extractor.ExtractImageSources(body, contentType)) {
		add(src, result.KindImage, "Image: "+src)
	}
	return refs
}

// checkResource requests a single reference and records the outcome.
func (c *Crawler) checkResource(ctx context.Context, r *run, ref ResourceRef) {
	base := result.Record{
		Label: ref.Label,
		Kind:  ref.Kind,
		Page:  ref.Page,
		URL:   ref.URL,
	}
	c.record(ctx, r, c.safely(base, func() result.Record {
		out := c.fetcher.Fetch(ctx, ref.URL, ref.Method(), c.cfg.ResourceTimeout)
		return outcomeRecord(base, out, false)
	}))
}

// safely runs check and turns a panic into an ERROR record for base, so one
// misbehaving check cannot end the run.
func (c *Crawler) safely(base result.Record, check func() result.Record) (rec result.Record) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("check panicked", slog.String("label", base.Label), slog.Any("panic", r))
			rec = base
			rec.Status = result.StatusError
			rec.Detail = fmt.Sprintf("unexpected failure: %v", r)
			rec.Category = result.CategoryUnknown
		}
	}()
	return check()
}

// record appends rec to the run's log and publishes a progress event.
func (c *Crawler) record(ctx context.Context, r *run, rec result.Record) result.Record {
	rec = r.log.Append(rec)

	r.mu.Lock()
	r.checked++
	if !rec.Passed() {
		r.failed++
	}
	evt := CrawlEvent{
		Label:   rec.Label,
		URL:     rec.URL,
		Kind:    rec.Kind,
		Status:  rec.Status,
		Detail:  rec.Detail,
		Checked: r.checked,
		Failed:  r.failed,
	}
	r.mu.Unlock()

	if c.progressCh != nil {
		select {
		case c.progressCh <- evt:
		case <-ctx.Done():
		}
	}
	return rec
}

// outcomeRecord fills base from a fetch outcome. Page loads always carry a
// status detail; references only mention the status when they fail.
func outcomeRecord(base result.Record, out FetchOutcome, alwaysDetail bool) result.Record {
	rec := base
	rec.StatusCode = out.StatusCode
	rec.Status = result.StatusFor(out.StatusCode, out.Err)

	switch {
	case out.Err != nil:
		rec.Detail = out.Err.Error()
	case alwaysDetail || rec.Status != result.StatusPass:
		rec.Detail = fmt.Sprintf("Status: %d", out.StatusCode)
	}
	if rec.Status != result.StatusPass {
		rec.Category = result.ClassifyError(out.Err, out.StatusCode)
	}
	return rec
}
