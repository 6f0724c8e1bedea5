// Package selector implements the ordered fallback-chain strategy for
// locating semantic fields in unstable markup. Each field is described
// by a candidate locator list; candidates are tried in order and the
// first non-empty match wins. Locator failures are skipped, never
// propagated, so a layout change degrades to a miss instead of an
// error.
package selector

import (
	"github.com/aymanedev/tiktok-shop-scraper/internal/dom"
	"github.com/aymanedev/tiktok-shop-scraper/internal/normalize"
)

// Miss is the sentinel for display fields that no candidate resolved.
const Miss = "N/A"

// State classifies a resolution outcome.
type State int

const (
	// StateMiss means no candidate locator produced a value.
	StateMiss State = iota
	// StateResolved means a candidate matched and yielded text.
	StateResolved
)

// Result is the typed outcome of resolving one semantic field.
type Result struct {
	Value    string
	State    State
	Selector string
}

// Resolved reports whether a candidate produced a value.
func (r Result) Resolved() bool {
	return r.State == StateResolved
}

// Or returns the resolved value, or the given sentinel on a miss.
func (r Result) Or(sentinel string) string {
	if r.Resolved() {
		return r.Value
	}
	return sentinel
}

// ResolveText tries each candidate locator against the scope and
// returns the first match with non-empty cleaned text.
func ResolveText(scope dom.Element, candidates []string) Result {
	for _, sel := range candidates {
		el, err := scope.Query(sel)
		if err != nil {
			continue
		}

		text, err := el.Text()
		if err != nil {
			continue
		}

		if cleaned := normalize.CleanText(text); cleaned != "" {
			return Result{Value: cleaned, State: StateResolved, Selector: sel}
		}
	}

	return Result{State: StateMiss}
}

// ResolveAttr tries each candidate locator and returns the first match
// carrying a non-empty value for the named attribute.
func ResolveAttr(scope dom.Element, candidates []string, attr string) Result {
	for _, sel := range candidates {
		el, err := scope.Query(sel)
		if err != nil {
			continue
		}

		value, err := el.Attr(attr)
		if err != nil || value == "" {
			continue
		}

		return Result{Value: value, State: StateResolved, Selector: sel}
	}

	return Result{State: StateMiss}
}

// ResolveElements returns the match set of the first candidate locator
// that yields at least one element. An empty result is a structural
// miss, not an error.
func ResolveElements(scope dom.Element, candidates []string) []dom.Element {
	for _, sel := range candidates {
		elements, err := scope.QueryAll(sel)
		if err != nil {
			continue
		}
		if len(elements) > 0 {
			return elements
		}
	}

	return nil
}
