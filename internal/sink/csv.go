package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/aymanedev/tiktok-shop-scraper/internal/models"
)

// csvColumns fixes the output column order.
var csvColumns = []string{
	"product_url",
	"product_name",
	"reviewer_name",
	"rating",
	"review_text",
	"review_date",
	"verified_purchase",
	"helpful_votes",
	"review_id",
	"country_market",
	"scrape_timestamp",
}

// CSVSink writes reviews to a UTF-8 CSV file. Quoting and escaping are
// handled by encoding/csv.
type CSVSink struct {
	Path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

func (s *CSVSink) Write(ctx context.Context, reviews []models.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range reviews {
		record := []string{
			r.ProductURL,
			r.ProductName,
			r.ReviewerName,
			r.Rating,
			r.ReviewText,
			r.ReviewDate,
			r.VerifiedPurchase,
			strconv.Itoa(r.HelpfulVotes),
			r.ReviewID,
			r.Market,
			r.ScrapedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
