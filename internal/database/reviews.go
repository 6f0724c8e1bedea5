package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/aymanedev/tiktok-shop-scraper/internal/models"
)

const createReviewsTable = `
CREATE TABLE IF NOT EXISTS reviews (
	review_id         TEXT PRIMARY KEY,
	product_url       TEXT NOT NULL,
	product_name      TEXT NOT NULL,
	reviewer_name     TEXT NOT NULL,
	rating            TEXT NOT NULL,
	review_text       TEXT NOT NULL,
	review_date       TEXT NOT NULL,
	verified_purchase TEXT NOT NULL,
	helpful_votes     INT NOT NULL DEFAULT 0,
	country_market    TEXT NOT NULL,
	scraped_at        TIMESTAMPTZ NOT NULL
)`

const upsertReview = `
INSERT INTO reviews (
	review_id, product_url, product_name, reviewer_name, rating,
	review_text, review_date, verified_purchase, helpful_votes,
	country_market, scraped_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (review_id) DO UPDATE SET
	helpful_votes = EXCLUDED.helpful_votes,
	scraped_at    = EXCLUDED.scraped_at`

// ReviewRepository persists the final aggregate, keyed by the
// deterministic review id so re-runs update rather than duplicate.
type ReviewRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewReviewRepository(db *DB, logger *slog.Logger) *ReviewRepository {
	return &ReviewRepository{
		db:     db,
		logger: logger.With("component", "review_repository"),
	}
}

func (r *ReviewRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.pool.Exec(ctx, createReviewsTable); err != nil {
		return fmt.Errorf("failed to create reviews table: %w", err)
	}
	return nil
}

// Write stores all reviews in one transaction.
func (r *ReviewRepository) Write(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, review := range reviews {
			_, err := tx.Exec(ctx, upsertReview,
				review.ReviewID,
				review.ProductURL,
				review.ProductName,
				review.ReviewerName,
				review.Rating,
				review.ReviewText,
				review.ReviewDate,
				review.VerifiedPurchase,
				review.HelpfulVotes,
				review.Market,
				review.ScrapedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert review %s: %w", review.ReviewID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("reviews persisted", "count", len(reviews))
	return nil
}
