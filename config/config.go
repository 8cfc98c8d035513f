// Package config provides the configuration for a sitecheck run: defaults,
// the YAML configuration file and validation of the merged result.
package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/lukemcguire/sitecheck/crawler"
	"github.com/lukemcguire/sitecheck/urlutil"
)

// AppName is the application name used for XDG directory paths.
const AppName = "sitecheck"

// Output formats.
const (
	FormatText     = "text"
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Formats lists every supported output format.
var Formats = []string{FormatText, FormatTable, FormatJSON, FormatCSV, FormatMarkdown}

// Config holds every option of a run. File values are decoded onto the
// defaults, then command-line flags are applied on top.
type Config struct {
	// BaseURL is the site root. Every page and reference is joined to it.
	BaseURL string `yaml:"base_url"`

	// Pages are the page paths to check, in order. "" is the root.
	Pages []string `yaml:"pages"`

	// NavSelector is the CSS selector for navigation anchors.
	NavSelector string `yaml:"nav_selector"`

	PageTimeout     time.Duration `yaml:"page_timeout"`
	ResourceTimeout time.Duration `yaml:"resource_timeout"`

	// Concurrency is how many references of one page are checked at once.
	// 1 keeps the record order fully deterministic.
	Concurrency int `yaml:"concurrency"`

	UserAgent     string `yaml:"user_agent"`
	RespectRobots bool   `yaml:"respect_robots"`

	// Format is one of Formats.
	Format string `yaml:"format"`
}

// Default returns a Config populated with the default values.
func Default() Config {
	def := crawler.DefaultConfig()
	return Config{
		BaseURL:         def.BaseURL,
		Pages:           def.Pages,
		NavSelector:     def.NavSelector,
		PageTimeout:     def.PageTimeout,
		ResourceTimeout: def.ResourceTimeout,
		Concurrency:     def.Concurrency,
		UserAgent:       def.UserAgent,
		RespectRobots:   def.RespectRobots,
		Format:          FormatText,
	}
}

// Validate checks the configuration for errors.
// Returns nil if the configuration is valid.
func (c Config) Validate() error {
	if _, err := urlutil.NormalizeBase(c.BaseURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if len(c.Pages) == 0 {
		return ErrNoPages
	}
	if c.PageTimeout <= 0 || c.ResourceTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	if err := crawler.ValidateSelector(c.NavSelector); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSelector, err)
	}
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Format)
	}
	return nil
}

// CrawlerConfig converts c into the crawler's configuration.
func (c Config) CrawlerConfig(client *http.Client, logger *slog.Logger) crawler.Config {
	return crawler.Config{
		BaseURL:         c.BaseURL,
		Pages:           slices.Clone(c.Pages),
		NavSelector:     c.NavSelector,
		PageTimeout:     c.PageTimeout,
		ResourceTimeout: c.ResourceTimeout,
		Concurrency:     c.Concurrency,
		UserAgent:       c.UserAgent,
		RespectRobots:   c.RespectRobots,
		Client:          client,
		Logger:          logger,
	}
}
