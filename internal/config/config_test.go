package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "lancome", cfg.Scraper.Brand)
	assert.Equal(t, []string{"vietnam", "saudi_arabia"}, cfg.Scraper.MarketNames)
	assert.Equal(t, 20, cfg.Scraper.MaxProductsPerMarket)
	assert.Equal(t, 10, cfg.Scraper.MinReviewLength)
	assert.Equal(t, 5000, cfg.Scraper.MaxReviewLength)
	assert.NotEmpty(t, cfg.Selectors.ProductCards)

	require.NoError(t, cfg.Validate())
}

func TestValidateUnknownMarket(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Scraper.MarketNames = []string{"vietnam", "atlantis"}

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown market: atlantis")
}

func TestValidateInvertedDelays(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Scraper.MinDelay = cfg.Scraper.MaxDelay * 2

	assert.Error(t, cfg.Validate())
}

func TestValidateReviewBounds(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Scraper.MinReviewLength = 6000

	assert.Error(t, cfg.Validate())
}

func TestMarketLookup(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	market, err := cfg.Market("vietnam")
	require.NoError(t, err)
	assert.Equal(t, "vn", market.Code)
	assert.Equal(t, "VND", market.Currency)
	assert.Equal(t, "https://shop.tiktok.com/vn", market.BaseURL)

	_, err = cfg.Market("mars")
	assert.Error(t, err)
}

func TestLoadSelectorsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.json")
	data := `{"product_cards": [".custom-card"], "review_items": [".custom-review"]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	selectors, err := LoadSelectors(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".custom-card"}, selectors.ProductCards)
	assert.Equal(t, []string{".custom-review"}, selectors.ReviewItems)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultSelectors().ReviewerName, selectors.ReviewerName)
}

func TestLoadSelectorsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadSelectors(path)
	assert.Error(t, err)
}
