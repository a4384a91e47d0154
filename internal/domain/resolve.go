package domain

import (
	"fmt"
	"net/url"
)

// Resolve turns a possibly relative image reference into an absolute URL.
// Absolute references pass through unchanged; root-relative and
// scheme-relative references take scheme and host from the page URL; any
// other reference resolves against the page URL's directory.
//
// The page URL is validated before a run starts, so a malformed page URL
// here is an invariant violation, not a recoverable condition.
func Resolve(reference, pageURL string) (string, error) {
	ref, err := url.Parse(reference)
	if err != nil {
		return "", fmt.Errorf("parse reference %q: %w", reference, err)
	}
	if ref.IsAbs() {
		return reference, nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url %q: %w", pageURL, err)
	}
	if base.Scheme == "" {
		return "", fmt.Errorf("page url %q has no scheme: %w", pageURL, ErrInvalidURL)
	}

	return base.ResolveReference(ref).String(), nil
}
