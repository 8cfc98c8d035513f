package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// FetchOutcome is the result of one HTTP round-trip. Exactly one of
// StatusCode and Err is meaningful: a transport failure leaves StatusCode 0.
type FetchOutcome struct {
	URL         string        // The URL that was requested
	Method      string        // GET or HEAD
	StatusCode  int           // HTTP status code (0 if the request did not complete)
	Body        []byte        // Response body, GET only, capped at MaxBodySize
	ContentType string        // Content-Type response header
	Err         error         // Transport, timeout or body read failure
	Elapsed     time.Duration // Wall time spent on the request
}

// Fetcher issues single-shot GET and HEAD requests with a per-call timeout.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// NewFetcher creates a Fetcher around client. A nil logger discards output.
func NewFetcher(client *http.Client, userAgent string, maxBodySize int64, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{
		client:      client,
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Fetch requests rawURL with method and returns the outcome. The request is
// bounded by timeout; a non-positive timeout leaves only ctx in control.
// Fetch never retries.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, method string, timeout time.Duration) (out FetchOutcome) {
	out.URL = rawURL
	out.Method = method
	start := time.Now()
	defer func() {
		out.Elapsed = time.Since(start)
		f.logger.Debug("fetch",
			slog.String("method", method),
			slog.String("url", rawURL),
			slog.Int("status", out.StatusCode),
			slog.Duration("elapsed", out.Elapsed),
			slog.Any("error", out.Err))
	}()

	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, nil)
	if err != nil {
		out.Err = fmt.Errorf("create request: %w", err)
		return out
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		out.Err = err
		return out
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && out.Err == nil {
			out.Err = fmt.Errorf("close response body: %w", closeErr)
			out.StatusCode = 0
		}
	}()

	out.ContentType = resp.Header.Get("Content-Type")

	if method == http.MethodGet {
		body, readErr := readBody(resp.Body, f.maxBodySize)
		if readErr != nil {
			out.Err = fmt.Errorf("read response body: %w", readErr)
			return out
		}
		out.Body = body
	}

	out.StatusCode = resp.StatusCode
	return out
}

// readBody reads at most limit bytes. Anything past the limit is discarded
// rather than treated as an error; the page is still parsed from the prefix.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return body, nil
}
