package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aymanedev/tiktok-shop-scraper/internal/models"
)

// JSONSink writes reviews as an indented JSON array.
type JSONSink struct {
	Path string
}

func NewJSONSink(path string) *JSONSink {
	return &JSONSink{Path: path}
}

func (s *JSONSink) Write(ctx context.Context, reviews []models.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(reviews, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reviews: %w", err)
	}

	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}
