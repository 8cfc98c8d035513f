package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/lukemcguire/sitecheck/urlutil"
)

// robotsFetchTimeout bounds the robots.txt request for a host.
const robotsFetchTimeout = 5 * time.Second

// RobotsChecker fetches robots.txt once per host and answers whether a
// reference may be checked. Any failure to obtain or parse the file allows
// everything.
type RobotsChecker struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	rules map[string]*robotstxt.Group // host -> group for userAgent; nil means allow all
}

// NewRobotsChecker creates a RobotsChecker that identifies as userAgent.
func NewRobotsChecker(client *http.Client, userAgent string) *RobotsChecker {
	if client == nil {
		client = &http.Client{}
	}
	return &RobotsChecker{
		client:    client,
		userAgent: userAgent,
		rules:     make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether rawURL may be requested. The returned error is
// informational; on error the answer is always true.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true, fmt.Errorf("parse URL: %w", err)
	}
	if u.Host == "" {
		return true, nil
	}

	group, err := r.groupFor(ctx, u.Scheme, u.Host)
	if group == nil {
		return true, err
	}
	return group.Test(urlutil.PathOf(rawURL)), err
}

func (r *RobotsChecker) groupFor(ctx context.Context, scheme, host string) (*robotstxt.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if group, ok := r.rules[host]; ok {
		return group, nil
	}

	data, err := r.fetch(ctx, scheme, host)
	var group *robotstxt.Group
	if data != nil {
		group = data.FindGroup(r.userAgent)
	}
	r.rules[host] = group
	return group, err
}

func (r *RobotsChecker) fetch(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, error) {
	ctx, cancel := context.WithTimeout(ctx, robotsFetchTimeout)
	defer cancel()

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create robots.txt request for host %s: %w", host, err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt for host %s: %w", host, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	// 4xx and 5xx both mean no usable rules.
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt body for host %s: %w", host, err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt for host %s: %w", host, err)
	}
	return data, nil
}
