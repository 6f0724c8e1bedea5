// Package sink writes the final review aggregate to its destinations.
// Sinks are fire-and-forget from the pipeline's point of view: a write
// failure is logged by the caller, never fatal to the run.
package sink

import (
	"context"

	"github.com/aymanedev/tiktok-shop-scraper/internal/models"
)

type Sink interface {
	Write(ctx context.Context, reviews []models.Review) error
}
