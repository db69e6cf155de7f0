// Package fetcher provides best-effort full-text resolution for relay items.
// It fetches HTML from an entry's URL and extracts clean article text using
// the Mozilla Readability algorithm, with a meta-description fallback for
// pages Readability cannot handle (podcast episode pages and the like).
package fetcher

import "errors"

// Sentinel errors for content resolution.
var (
	// ErrInvalidURL indicates the URL failed validation before any request.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrPrivateIP indicates the hostname resolves to a private address.
	ErrPrivateIP = errors.New("URL resolves to private IP")

	// ErrTooManyRedirects indicates the redirect limit was exceeded.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrContentUnavailable indicates no readable content was found. This is
	// a soft condition: the caller falls back to the entry's own summary.
	ErrContentUnavailable = errors.New("no readable content found")
)
