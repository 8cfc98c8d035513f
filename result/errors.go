package result

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ErrorCategory explains why a check did not pass.
type ErrorCategory string

const (
	CategoryTimeout           ErrorCategory = "timeout"
	CategoryDNSFailure        ErrorCategory = "dns_failure"
	CategoryConnectionRefused ErrorCategory = "connection_refused"
	CategoryRedirect          ErrorCategory = "redirect" // final 3xx; redirects with a Location are followed
	Category4xx               ErrorCategory = "4xx"
	Category5xx               ErrorCategory = "5xx"
	CategoryRedirectLoop      ErrorCategory = "redirect_loop"
	CategoryUnknown           ErrorCategory = "unknown"
)

// ClassifyError determines the category of a FAIL or ERROR outcome from the
// transport error and the HTTP status code. A 200 with no error has no
// category.
func ClassifyError(err error, statusCode int) ErrorCategory {
	if err == nil {
		switch {
		case statusCode == 200:
			return ""
		case statusCode >= 300 && statusCode <= 399:
			return CategoryRedirect
		case statusCode >= 400 && statusCode <= 499:
			return Category4xx
		case statusCode >= 500:
			return Category5xx
		default:
			return CategoryUnknown
		}
	}

	// net/http reports "stopped after 10 redirects" for loops
	if strings.Contains(err.Error(), "stopped after") && strings.Contains(err.Error(), "redirects") {
		return CategoryRedirectLoop
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CategoryDNSFailure
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" && strings.Contains(opErr.Error(), "connection refused") {
			return CategoryConnectionRefused
		}
		if opErr.Timeout() {
			return CategoryTimeout
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}

	return CategoryUnknown
}

// FormatCategory returns a human-readable label for an error category.
func FormatCategory(cat ErrorCategory) string {
	switch cat {
	case CategoryTimeout:
		return "Timeouts"
	case CategoryDNSFailure:
		return "DNS Failures"
	case CategoryConnectionRefused:
		return "Connection Refused"
	case CategoryRedirect:
		return "Redirects Without Location (3xx)"
	case Category4xx:
		return "Client Errors (4xx)"
	case Category5xx:
		return "Server Errors (5xx)"
	case CategoryRedirectLoop:
		return "Redirect Loops"
	default:
		return "Other Errors"
	}
}
