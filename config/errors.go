package config

import "errors"

// Configuration errors. Validate wraps these so callers can use errors.Is.
var (
	// ErrConfigNotFound is returned when an explicitly requested configuration
	// file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrNoPages is returned when the page list is empty.
	ErrNoPages = errors.New("no pages to check")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when concurrency is below 1.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be at least 1")

	ErrInvalidSelector = errors.New("invalid navigation selector")
	ErrUnknownFormat   = errors.New("unknown output format")
)
