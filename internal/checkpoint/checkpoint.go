// Package checkpoint persists the running review aggregate so an
// interrupted run can resume without re-harvesting collected products.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aymanedev/tiktok-shop-scraper/internal/models"
)

type Store struct {
	path   string
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With("component", "checkpoint"),
	}
}

// Save writes a snapshot of the aggregate. The write goes through a
// temp file and rename so a crash mid-write never corrupts the last
// good checkpoint.
func (s *Store) Save(runID string, reviews []models.Review) error {
	cp := models.Checkpoint{
		RunID:     runID,
		Timestamp: time.Now(),
		Count:     len(reviews),
		Records:   reviews,
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}

	s.logger.Debug("checkpoint saved", "count", len(reviews), "path", s.path)
	return nil
}

// Load returns the reviews from the last checkpoint. A missing file is
// a fresh start, not an error; a malformed file is logged and treated
// as empty so a bad checkpoint never blocks a run.
func (s *Store) Load() []models.Review {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("failed to read checkpoint", "path", s.path, "error", err)
		}
		return nil
	}

	var cp models.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		s.logger.Error("malformed checkpoint ignored", "path", s.path, "error", err)
		return nil
	}

	s.logger.Info("checkpoint loaded", "count", len(cp.Records), "saved_at", cp.Timestamp)
	return cp.Records
}
