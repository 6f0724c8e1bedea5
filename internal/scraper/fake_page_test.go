package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/aymanedev/tiktok-shop-scraper/internal/dom"
	"github.com/aymanedev/tiktok-shop-scraper/internal/parser"
)

// fakePage serves canned HTML per URL through the dom interfaces,
// backed by the same goquery adapter the fallback path uses.
type fakePage struct {
	pages   map[string]string
	navErr  map[string]error
	visited []string
	scrolls int

	current     dom.Element
	currentHTML string
	closed      bool
}

func newFakePage(pages map[string]string) *fakePage {
	return &fakePage{
		pages:  pages,
		navErr: make(map[string]error),
	}
}

func (f *fakePage) Navigate(_ context.Context, url string) error {
	f.visited = append(f.visited, url)

	if err := f.navErr[url]; err != nil {
		return err
	}

	html, ok := f.pages[url]
	if !ok {
		return fmt.Errorf("no fixture for %s", url)
	}

	root, err := parser.Parse(html)
	if err != nil {
		return err
	}

	f.current = root
	f.currentHTML = html
	return nil
}

func (f *fakePage) Root() dom.Element {
	return f.current
}

func (f *fakePage) WaitFor(selector string, _ time.Duration) error {
	if f.current == nil {
		return fmt.Errorf("no page loaded")
	}
	if _, err := f.current.Query(selector); err != nil {
		return fmt.Errorf("timeout waiting for %s", selector)
	}
	return nil
}

func (f *fakePage) ScrollToBottom() error {
	f.scrolls++
	return nil
}

func (f *fakePage) Content() (string, error) {
	return f.currentHTML, nil
}

func (f *fakePage) Close() error {
	f.closed = true
	return nil
}
