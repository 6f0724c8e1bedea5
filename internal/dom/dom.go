// Package dom defines the browser and document capabilities the
// extraction pipeline depends on. The pipeline never imports a concrete
// browser; internal/browser adapts playwright pages and internal/parser
// adapts parsed raw markup to these interfaces.
package dom

import (
	"context"
	"errors"
	"time"
)

// ErrNoMatch is returned by Query when no element matches the selector.
// It marks a structural miss, not a failure.
var ErrNoMatch = errors.New("no element matched selector")

// Element is a queryable scope within a document.
type Element interface {
	// Text returns the element's visible text content.
	Text() (string, error)

	// Attr returns the named attribute, or "" when absent.
	Attr(name string) (string, error)

	// Query returns the first descendant matching the CSS selector,
	// or ErrNoMatch.
	Query(selector string) (Element, error)

	// QueryAll returns all descendants matching the CSS selector.
	// An empty slice is not an error.
	QueryAll(selector string) ([]Element, error)

	// Click activates the element. Adapters without interaction
	// support may return an error; callers treat clicks as
	// best-effort.
	Click() error
}

// Page is a navigable browser page.
type Page interface {
	// Navigate loads the given URL and waits for the DOM to settle.
	Navigate(ctx context.Context, url string) error

	// Root returns the document root as a query scope.
	Root() Element

	// WaitFor blocks until an element matching the selector appears
	// or the timeout elapses.
	WaitFor(selector string, timeout time.Duration) error

	// ScrollToBottom scrolls the viewport to the end of the document
	// to trigger progressive content loading.
	ScrollToBottom() error

	// Content returns the current page markup.
	Content() (string, error)

	Close() error
}
