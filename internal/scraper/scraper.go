// Package scraper implements the three-stage extraction pipeline:
// product discovery on market search pages, review harvesting on
// product detail pages, and the orchestrator that drives both across
// the configured markets.
package scraper

import (
	"errors"

	"github.com/aymanedev/tiktok-shop-scraper/internal/config"
	"github.com/aymanedev/tiktok-shop-scraper/internal/dom"
)

var (
	ErrNoProducts = errors.New("no products discovered")
)

// PageFactory opens a fresh browser page configured for one market.
// The pipeline opens one page per scraping call and closes it when the
// call completes.
type PageFactory func(market config.Market) (dom.Page, error)
