package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// NormalizeBase takes a configured base URL and returns the form used as the
// single join point for every resolved reference.
// Normalization includes:
// - Lowercasing the scheme and host
// - Stripping fragments (#section) and query strings
// - Stripping all trailing slashes, including the root path "/"
//
// Returns an error if the input is empty, cannot be parsed, or is not an
// http(s) URL with a host.
func NormalizeBase(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("cannot normalize empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalize URL %q: %w", rawURL, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("URL must have both scheme and host")
	}

	if !IsHTTPScheme(rawURL) {
		return "", fmt.Errorf("URL %q must use http or https", rawURL)
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)

	parsed.Fragment = ""
	parsed.RawQuery = ""
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawPath = ""

	return parsed.String(), nil
}
