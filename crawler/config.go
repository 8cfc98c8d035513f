package crawler

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the local static server the site is usually served from.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultNavSelector selects anchors inside the navigation region.
	DefaultNavSelector = "nav a[href]"
	// DefaultUserAgent identifies sitecheck in server logs.
	DefaultUserAgent = "sitecheck/1.0"
	// DefaultMaxBodySize caps how much of a page body is read for parsing.
	DefaultMaxBodySize = 5 * 1024 * 1024
)

// DefaultPages returns the page list checked when none is configured.
// The empty path is the site root.
func DefaultPages() []string {
	return []string{"", "about.html", "products.html", "contact.html"}
}

// Config holds crawler configuration.
type Config struct {
	BaseURL         string        // Site root every page and reference is joined to
	Pages           []string      // Page paths, checked in this order
	NavSelector     string        // CSS selector for navigation anchors (default "nav a[href]")
	PageTimeout     time.Duration // Timeout for full page loads (default 10s)
	ResourceTimeout time.Duration // Timeout for link and image checks (default 5s)
	Concurrency     int           // Simultaneous resource checks within a page (default 1)
	UserAgent       string        // User-Agent header sent with every request
	MaxBodySize     int64         // Maximum page body bytes read (default 5 MiB)
	RespectRobots   bool          // Skip references disallowed by robots.txt
	Client          *http.Client  // HTTP client; nil uses a fresh client
	Logger          *slog.Logger  // Structured logger; nil discards
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		Pages:           DefaultPages(),
		NavSelector:     DefaultNavSelector,
		PageTimeout:     10 * time.Second,
		ResourceTimeout: 5 * time.Second,
		Concurrency:     1,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
	}
}

// withDefaults fills zero values from DefaultConfig. Pages are left alone:
// an explicitly empty list stays empty.
func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Pages == nil {
		cfg.Pages = def.Pages
	}
	if cfg.NavSelector == "" {
		cfg.NavSelector = def.NavSelector
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = def.PageTimeout
	}
	if cfg.ResourceTimeout <= 0 {
		cfg.ResourceTimeout = def.ResourceTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = def.MaxBodySize
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}
