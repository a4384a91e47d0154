package extract

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/cwygoda/imgcatcher/internal/domain"
)

// attrSelectors maps the CSS selectors scanned for image references to
// the attribute carrying the reference.
var attrSelectors = map[string]string{
	"img[src]":     "src",
	"embed[src]":   "src",
	"a[href]":      "href",
	"link[href]":   "href",
	"object[data]": "data",
}

var srcsetSelector = "img[srcset], source[srcset]"

// srcAttrPattern is the fallback for markup too broken to parse as a DOM.
// It only sees src attributes, which is the documented limit of the mode.
var srcAttrPattern = regexp.MustCompile(`(?i)src\s*=\s*["']([^"']+)["']`)

// Extractor scans page markup for image references matching a set of
// extension classes. Matching is case-insensitive; the extension itself
// is preserved verbatim downstream.
type Extractor struct {
	filter   map[string]bool
	useRegex bool
}

// New creates an extractor accepting the given extension classes
// (without dots, any case). useRegex switches to the regex fallback
// instead of DOM parsing.
func New(extensions []string, useRegex bool) *Extractor {
	filter := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		filter[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &Extractor{filter: filter, useRegex: useRegex}
}

// Extract returns the deduplicated candidate set for the page, resolved
// against pageURL and sorted ascending by URL. Empty markup yields an
// empty set, not an error.
func (e *Extractor) Extract(markup []byte, pageURL string) ([]domain.Candidate, error) {
	var refs []string
	var err error
	if e.useRegex {
		refs = e.scanRegex(markup)
	} else {
		refs, err = e.scanDOM(markup)
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool)
	var candidates []domain.Candidate
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" || strings.HasPrefix(ref, "data:") {
			continue
		}
		resolved, err := domain.Resolve(ref, pageURL)
		if err != nil {
			continue
		}
		class := domain.ExtensionClass(resolved)
		if !e.filter[class] {
			continue
		}
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		candidates = append(candidates, domain.Candidate{URL: resolved, Class: class})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].URL < candidates[j].URL })
	return candidates, nil
}

func (e *Extractor) scanDOM(markup []byte) ([]string, error) {
	root, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(root)

	var refs []string
	for selector, attr := range attrSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if val, ok := sel.Attr(attr); ok {
				refs = append(refs, val)
			}
		})
	}
	doc.Find(srcsetSelector).Each(func(_ int, sel *goquery.Selection) {
		refs = append(refs, parseSrcset(sel.AttrOr("srcset", ""))...)
	})
	return refs, nil
}

func (e *Extractor) scanRegex(markup []byte) []string {
	var refs []string
	for _, group := range srcAttrPattern.FindAllSubmatch(markup, -1) {
		refs = append(refs, string(group[1]))
	}
	return refs
}

// parseSrcset pulls the URL out of each comma-separated srcset entry,
// dropping the width/density descriptor.
func parseSrcset(srcset string) []string {
	var urls []string
	for _, entry := range strings.Split(srcset, ",") {
		fields := strings.Fields(entry)
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}
