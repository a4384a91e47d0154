package domain

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// FallbackExtension is used when a source URL carries no recognizable
// trailing extension.
const FallbackExtension = ".jpg"

// maxExtensionLen caps how long an alphanumeric run after the final dot
// may be before it stops looking like a file extension.
const maxExtensionLen = 8

// Filename computes the output name for a task: static prefix, then the
// ordinal zero-padded to pad digits, then the source URL's extension.
// An ordinal wider than pad widens the field rather than truncating, so
// names stay pairwise distinct within a run.
func Filename(ordinal, pad int, staticPrefix, sourceURL string) string {
	return fmt.Sprintf("%s%0*d%s", staticPrefix, pad, ordinal, Extension(sourceURL))
}

// Extension returns the trailing extension of the URL's path, dot
// included and case preserved, when it is a run of at most 8
// alphanumerics. Anything else falls back to ".jpg".
func Extension(sourceURL string) string {
	ext := rawExtension(sourceURL)
	if ext == "" {
		return FallbackExtension
	}
	return ext
}

// ExtensionClass returns the lowercased extension without the dot, or ""
// when the URL has none. Extension matching is case-insensitive, so the
// class is what filters compare against.
func ExtensionClass(sourceURL string) string {
	ext := rawExtension(sourceURL)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

func rawExtension(sourceURL string) string {
	p := sourceURL
	if u, err := url.Parse(sourceURL); err == nil {
		p = u.Path
	}
	ext := path.Ext(p)
	if len(ext) < 2 || len(ext) > maxExtensionLen+1 {
		return ""
	}
	for _, c := range ext[1:] {
		if !isAlnum(c) {
			return ""
		}
	}
	return ext
}

func isAlnum(c rune) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
