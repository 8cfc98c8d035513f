package crawler

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const imageSelector = "img[src]"

// Extractor pulls navigation link and image references out of a page body.
// Raw attribute values are returned untouched; resolution happens later.
type Extractor struct {
	navSelector string
}

// NewExtractor creates an Extractor. An empty selector means DefaultNavSelector.
func NewExtractor(navSelector string) (*Extractor, error) {
	if navSelector == "" {
		navSelector = DefaultNavSelector
	}
	if err := ValidateSelector(navSelector); err != nil {
		return nil, err
	}
	return &Extractor{navSelector: navSelector}, nil
}

// ValidateSelector reports whether sel is a usable CSS selector group.
func ValidateSelector(sel string) error {
	if _, err := cascadia.ParseGroup(sel); err != nil {
		return fmt.Errorf("invalid selector %q: %w", sel, err)
	}
	return nil
}

// ExtractNavLinks returns the distinct href values of anchors matched by the
// navigation selector. Anchors outside the navigation region are ignored.
func (e *Extractor) ExtractNavLinks(body []byte, contentType string) mapset.Set[string] {
	return e.collect(body, contentType, e.navSelector, "href")
}

// ExtractImageSources returns the distinct src values of every img element.
func (e *Extractor) ExtractImageSources(body []byte, contentType string) mapset.Set[string] {
	return e.collect(body, contentType, imageSelector, "src")
}

// collect never fails: a body that cannot be decoded or parsed yields an
// empty set.
func (e *Extractor) collect(body []byte, contentType, selector, attr string) mapset.Set[string] {
	refs := mapset.NewThreadUnsafeSet[string]()

	doc, err := parseDocument(body, contentType)
	if err != nil {
		return refs
	}

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if val, ok := s.Attr(attr); ok {
			refs.Add(val)
		}
	})
	return refs
}

// parseDocument decodes body to UTF-8 using the Content-Type charset (or
// sniffing when absent) and parses it leniently. Scripting is off, so the
// contents of noscript elements are parsed as markup.
func parseDocument(body []byte, contentType string) (*goquery.Document, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	root, err := html.ParseWithOptions(r, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// sortedRefs returns the set members in lexical order so checks run in a
// stable order across runs.
func sortedRefs(refs mapset.Set[string]) []string {
	out := refs.ToSlice()
	slices.Sort(out)
	return out
}
