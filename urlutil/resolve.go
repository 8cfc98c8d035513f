package urlutil

import "strings"

// RefKind classifies a raw reference found in page markup.
type RefKind int

const (
	// RefCheck is a same-origin reference that must be fetched.
	RefCheck RefKind = iota
	// RefExternal is an absolute http(s) reference to be left alone.
	RefExternal
	// RefFragment is an in-page anchor such as "#top".
	RefFragment
	// RefInline is an inline data: URI.
	RefInline
)

// String returns the lower-case name of the kind.
func (k RefKind) String() string {
	switch k {
	case RefCheck:
		return "check"
	case RefExternal:
		return "external"
	case RefFragment:
		return "fragment"
	case RefInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Skip reports whether references of this kind are not checked.
func (k RefKind) Skip() bool {
	return k != RefCheck
}

// Resolve turns a raw href or src attribute into the absolute URL to check.
//
// Relative references are joined to the site root rather than to the
// directory of pagePath: the page list is flat, so "style.css" on any page
// means baseURL + "/style.css". pagePath is accepted so callers keep the
// page context at hand, but it never affects the result.
//
// Skip kinds return an empty URL.
func Resolve(baseURL, pagePath, raw string) (string, RefKind) {
	switch {
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return "", RefExternal
	case strings.HasPrefix(raw, "#"):
		return "", RefFragment
	case strings.HasPrefix(raw, "data:"):
		return "", RefInline
	case strings.HasPrefix(raw, "/"):
		return baseURL + raw, RefCheck
	default:
		return baseURL + "/" + raw, RefCheck
	}
}

// PageURL returns the URL loaded for a configured page path.
// The empty path is the site root and maps to baseURL itself.
func PageURL(baseURL, pagePath string) string {
	if pagePath == "" {
		return baseURL
	}
	return baseURL + "/" + strings.TrimPrefix(pagePath, "/")
}
