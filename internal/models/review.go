package models

import (
	"time"
)

// Product is a candidate product found on a market's search page.
// Identity key is URL. Records are created by discovery and never
// mutated afterwards.
type Product struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Rating      string `json:"rating"`
	ReviewCount string `json:"review_count"`
	Brand       string `json:"brand"`
	Market      string `json:"market"`
}

// Review is one extracted review record. ReviewID is a deterministic
// digest over (reviewer, text, date, product URL) and doubles as the
// deduplication key.
type Review struct {
	ProductURL       string    `json:"product_url"`
	ProductName      string    `json:"product_name"`
	ReviewerName     string    `json:"reviewer_name"`
	Rating           string    `json:"rating"`
	ReviewText       string    `json:"review_text"`
	ReviewDate       string    `json:"review_date"`
	VerifiedPurchase string    `json:"verified_purchase"`
	HelpfulVotes     int       `json:"helpful_votes"`
	ReviewID         string    `json:"review_id"`
	Market           string    `json:"country_market"`
	ScrapedAt        time.Time `json:"scrape_timestamp"`
}

// Checkpoint is a snapshot of the aggregate written after each product
// so an interrupted run can resume without re-harvesting.
type Checkpoint struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"review_count"`
	Records   []Review  `json:"data"`
}

// Valid reports whether the review text length falls inside the
// configured bounds. Records outside the bounds are rejected, never
// truncated.
func (r Review) Valid(minLen, maxLen int) bool {
	n := len([]rune(r.ReviewText))
	return n >= minLen && n <= maxLen
}

// Dedupe removes reviews sharing a ReviewID, keeping the first
// occurrence. Input order is preserved.
func Dedupe(reviews []Review) []Review {
	seen := make(map[string]struct{}, len(reviews))
	out := make([]Review, 0, len(reviews))

	for _, r := range reviews {
		if _, ok := seen[r.ReviewID]; ok {
			continue
		}
		seen[r.ReviewID] = struct{}{}
		out = append(out, r)
	}

	return out
}
