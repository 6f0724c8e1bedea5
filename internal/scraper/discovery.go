package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/aymanedev/tiktok-shop-scraper/internal/config"
	"github.com/aymanedev/tiktok-shop-scraper/internal/dom"
	"github.com/aymanedev/tiktok-shop-scraper/internal/models"
	"github.com/aymanedev/tiktok-shop-scraper/internal/parser"
	"github.com/aymanedev/tiktok-shop-scraper/internal/selector"
)

// Discovery locates candidate products for the target brand on a
// market's search page.
type Discovery struct {
	cfg    *config.Config
	logger *slog.Logger
	sleep  func(time.Duration)
}

func NewDiscovery(cfg *config.Config, logger *slog.Logger) *Discovery {
	return &Discovery{
		cfg:    cfg,
		logger: logger.With("component", "discovery"),
		sleep:  time.Sleep,
	}
}

// Discover loads the market's brand search page and returns the
// products whose name contains the brand token. When no structured
// product cards render it falls back to scanning the raw page markup
// for product links.
func (d *Discovery) Discover(ctx context.Context, page dom.Page, marketName string, market config.Market) ([]models.Product, error) {
	s := &d.cfg.Scraper
	searchURL := fmt.Sprintf("%s/search?q=%s", market.BaseURL, url.QueryEscape(s.Brand))

	d.logger.Info("searching for brand products", "market", marketName, "url", searchURL)

	if err := page.Navigate(ctx, searchURL); err != nil {
		return nil, fmt.Errorf("failed to load search page: %w", err)
	}
	d.pause(ctx)

	// Soft wait: give any of the card candidates a chance to render.
	// A timeout here is logged, not fatal; resolution below decides.
	if err := page.WaitFor(strings.Join(d.cfg.Selectors.ProductCards, ", "), s.ElementTimeout); err != nil {
		d.logger.Warn("product cards did not appear before timeout", "market", marketName)
	}

	cards := selector.ResolveElements(page.Root(), d.cfg.Selectors.ProductCards)
	if len(cards) == 0 {
		d.logger.Warn("no product elements found, scanning page source", "market", marketName)
		return d.discoverFromSource(ctx, page, marketName, market)
	}

	if len(cards) > s.MaxProductsPerMarket {
		cards = cards[:s.MaxProductsPerMarket]
	}

	d.logger.Info("found product elements", "market", marketName, "count", len(cards))

	var products []models.Product
	for _, card := range cards {
		product, ok := d.extractProduct(card, marketName, market)
		if !ok {
			continue
		}

		if !containsBrand(product.Name, s.Brand) {
			continue
		}

		d.logger.Info("found brand product", "market", marketName, "name", product.Name)
		products = append(products, product)
	}

	return products, nil
}

// discoverFromSource is the resilience fallback for fully unstructured
// markup: collect product-path links from the raw page source, visit
// each, and accept pages whose title carries the brand token.
func (d *Discovery) discoverFromSource(ctx context.Context, page dom.Page, marketName string, market config.Market) ([]models.Product, error) {
	s := &d.cfg.Scraper

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page source: %w", err)
	}

	root, err := parser.Parse(html)
	if err != nil {
		return nil, err
	}

	links, err := parser.ProductLinks(root, s.ProductPathMarker, market.BaseURL, s.FallbackLinkLimit)
	if err != nil {
		return nil, err
	}

	d.logger.Info("fallback link scan", "market", marketName, "links", len(links))

	var products []models.Product
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return products, err
		}

		if err := page.Navigate(ctx, link); err != nil {
			d.logger.Debug("failed to visit product link", "url", link, "error", err)
			continue
		}
		d.pause(ctx)

		title := selector.ResolveText(page.Root(), d.cfg.Selectors.ProductTitle)
		if !title.Resolved() || !containsBrand(title.Value, s.Brand) {
			continue
		}

		products = append(products, models.Product{
			URL:         link,
			Name:        title.Value,
			Price:       selector.Miss,
			Rating:      selector.Miss,
			ReviewCount: selector.Miss,
			Brand:       s.Brand,
			Market:      market.Code,
		})
	}

	return products, nil
}

// extractProduct pulls the product fields from one card element. Any
// field that fails resolution is kept as the miss sentinel; only a
// missing URL discards the candidate.
func (d *Discovery) extractProduct(card dom.Element, marketName string, market config.Market) (models.Product, bool) {
	sel := &d.cfg.Selectors

	// The card may itself be the anchor, or wrap one.
	href, err := card.Attr("href")
	if err != nil || href == "" {
		href = selector.ResolveAttr(card, []string{"a"}, "href").Value
	}
	if href == "" {
		d.logger.Debug("product card without link skipped", "market", marketName)
		return models.Product{}, false
	}

	absolute, err := absoluteURL(market.BaseURL, href)
	if err != nil {
		d.logger.Debug("unresolvable product link skipped", "href", href, "error", err)
		return models.Product{}, false
	}

	return models.Product{
		URL:         absolute,
		Name:        selector.ResolveText(card, sel.ProductName).Or(selector.Miss),
		Price:       selector.ResolveText(card, sel.ProductPrice).Or(selector.Miss),
		Rating:      selector.ResolveText(card, sel.ProductRating).Or(selector.Miss),
		ReviewCount: selector.ResolveText(card, sel.ReviewCount).Or(selector.Miss),
		Brand:       d.cfg.Scraper.Brand,
		Market:      market.Code,
	}, true
}

func (d *Discovery) pause(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s := &d.cfg.Scraper
	d.sleep(randomDelay(s.MinDelay, s.MaxDelay))
}

func randomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// containsBrand is a case-insensitive substring match on product text.
// It over- and under-matches for multi-brand listings; that heuristic
// is kept deliberately.
func containsBrand(name, brand string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(brand))
}

func absoluteURL(baseURL, href string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}

	abs := base.ResolveReference(ref)
	if abs.Scheme == "" || abs.Host == "" {
		return "", fmt.Errorf("unresolvable URL: %s", href)
	}

	return abs.String(), nil
}
