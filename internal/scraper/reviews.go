package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aymanedev/tiktok-shop-scraper/internal/config"
	"github.com/aymanedev/tiktok-shop-scraper/internal/dom"
	"github.com/aymanedev/tiktok-shop-scraper/internal/models"
	"github.com/aymanedev/tiktok-shop-scraper/internal/normalize"
	"github.com/aymanedev/tiktok-shop-scraper/internal/selector"
)

// AnonymousReviewer is the sentinel used when no reviewer name
// resolves.
const AnonymousReviewer = "Anonymous"

// Harvester extracts review records from a product's detail page.
type Harvester struct {
	cfg    *config.Config
	logger *slog.Logger
	sleep  func(time.Duration)
	now    func() time.Time
}

func NewHarvester(cfg *config.Config, logger *slog.Logger) *Harvester {
	return &Harvester{
		cfg:    cfg,
		logger: logger.With("component", "harvester"),
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

// Harvest navigates to the product's detail page, triggers progressive
// content loading, and extracts normalized review records. A missing
// reviews section yields an empty result, not an error.
func (h *Harvester) Harvest(ctx context.Context, page dom.Page, product models.Product) ([]models.Review, error) {
	h.logger.Info("harvesting reviews", "product", product.Name, "url", product.URL)

	if err := page.Navigate(ctx, product.URL); err != nil {
		return nil, fmt.Errorf("failed to load product page: %w", err)
	}
	h.pause(ctx)

	if section := selector.ResolveElements(page.Root(), h.cfg.Selectors.ReviewsSection); len(section) == 0 {
		h.logger.Warn("no reviews section found", "url", product.URL)
		return nil, nil
	}

	h.loadMoreReviews(ctx, page)

	items := selector.ResolveElements(page.Root(), h.cfg.Selectors.ReviewItems)
	if len(items) > h.cfg.Scraper.MaxReviewsPerProduct {
		items = items[:h.cfg.Scraper.MaxReviewsPerProduct]
	}

	var reviews []models.Review
	for _, item := range items {
		review, ok := h.extractReview(item, product)
		if !ok {
			continue
		}
		reviews = append(reviews, review)
	}

	h.logger.Info("collected reviews", "product", product.Name, "count", len(reviews))
	return reviews, nil
}

// loadMoreReviews scrolls to the bottom a fixed number of times and
// then tries any load-more control. Every step is best-effort; a
// failure here only limits how much content was loaded.
func (h *Harvester) loadMoreReviews(ctx context.Context, page dom.Page) {
	for i := 0; i < h.cfg.Scraper.ScrollPasses; i++ {
		if ctx.Err() != nil {
			return
		}
		if err := page.ScrollToBottom(); err != nil {
			h.logger.Debug("scroll failed", "pass", i+1, "error", err)
			return
		}
		h.pause(ctx)
	}

	for _, sel := range h.cfg.Selectors.LoadMore {
		button, err := page.Root().Query(sel)
		if err != nil {
			continue
		}
		if err := button.Click(); err != nil {
			h.logger.Debug("load-more click failed", "selector", sel, "error", err)
			continue
		}
		h.pause(ctx)
	}
}

// extractReview resolves the review sub-fields from one review
// element. A review resolving neither reviewer name nor text is
// unextractable and dropped; every other partial result is kept with
// its defaults.
func (h *Harvester) extractReview(item dom.Element, product models.Product) (models.Review, bool) {
	sel := &h.cfg.Selectors

	name := selector.ResolveText(item, sel.ReviewerName)
	text := selector.ResolveText(item, sel.ReviewText)

	if !name.Resolved() && !text.Resolved() {
		return models.Review{}, false
	}

	// Some layouts expose the numeric rating as an attribute rather
	// than text.
	rating := selector.ResolveAttr(item, sel.ReviewRating, "data-rating")
	if !rating.Resolved() {
		rating = selector.ResolveText(item, sel.ReviewRating)
	}

	date := selector.ResolveText(item, sel.ReviewDate)

	helpful := 0
	if votes := selector.ResolveText(item, sel.HelpfulVotes); votes.Resolved() {
		if n, ok := normalize.ExtractNumber(votes.Value); ok && n > 0 {
			helpful = int(n)
		}
	}

	reviewer := name.Or(AnonymousReviewer)
	reviewText := text.Or("")
	reviewDate := normalize.NormalizeDate(date.Or(selector.Miss))

	return models.Review{
		ProductURL:   product.URL,
		ProductName:  product.Name,
		ReviewerName: reviewer,
		Rating:       normalize.NormalizeRating(rating.Or("")),
		ReviewText:   reviewText,
		ReviewDate:   reviewDate,
		// No confirmed selector exists for purchase verification;
		// extraction is a best-effort placeholder.
		VerifiedPurchase: selector.Miss,
		HelpfulVotes:     helpful,
		ReviewID:         normalize.ReviewID(reviewer, reviewText, reviewDate, product.URL),
		Market:           product.Market,
		ScrapedAt:        h.now(),
	}, true
}

func (h *Harvester) pause(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s := &h.cfg.Scraper
	h.sleep(randomDelay(s.MinDelay, s.MaxDelay))
}
