// Package parser adapts parsed raw markup to the dom interfaces via
// goquery. It backs the discovery fallback path, which scans page
// source directly when no structured product cards render.
package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aymanedev/tiktok-shop-scraper/internal/dom"
)

type element struct {
	sel *goquery.Selection
}

// Parse builds a dom.Element over the given HTML source.
func Parse(html string) (dom.Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &element{sel: doc.Selection}, nil
}

func (e *element) Text() (string, error) {
	return e.sel.Text(), nil
}

func (e *element) Attr(name string) (string, error) {
	value, _ := e.sel.Attr(name)
	return value, nil
}

func (e *element) Query(selector string) (dom.Element, error) {
	found := e.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, dom.ErrNoMatch
	}
	return &element{sel: found}, nil
}

func (e *element) QueryAll(selector string) ([]dom.Element, error) {
	var elements []dom.Element
	e.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &element{sel: s})
	})
	return elements, nil
}

// Click is unsupported on parsed markup; interactions need a live page.
func (e *element) Click() error {
	return fmt.Errorf("click not supported on parsed markup")
}

// ProductLinks collects anchor targets containing the product-path
// marker, resolved against the base URL, capped at limit. Duplicates
// are dropped while preserving document order.
func ProductLinks(root dom.Element, marker, baseURL string, limit int) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	anchors, err := root.QueryAll("a[href]")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var links []string

	for _, a := range anchors {
		if len(links) >= limit {
			break
		}

		href, err := a.Attr("href")
		if err != nil || href == "" || !strings.Contains(href, marker) {
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			continue
		}

		abs := base.ResolveReference(ref).String()
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	}

	return links, nil
}
