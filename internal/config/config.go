package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Scraper   ScraperConfig
	Selectors Selectors
	Markets   map[string]Market
	Browser   BrowserConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Logging   LoggingConfig
}

// Market describes one regional storefront instance.
type Market struct {
	Code     string
	Locale   string
	Currency string
	Timezone string
	BaseURL  string
}

type ScraperConfig struct {
	Brand                string
	MarketNames          []string
	MaxProductsPerMarket int
	MaxReviewsPerProduct int
	FallbackLinkLimit    int
	ScrollPasses         int
	ProductPathMarker    string

	MinDelay        time.Duration
	MaxDelay        time.Duration
	ProductDelayMin time.Duration
	ProductDelayMax time.Duration

	PageLoadTimeout time.Duration
	ElementTimeout  time.Duration

	MaxRetries int
	RetryDelay time.Duration

	MinReviewLength int
	MaxReviewLength int

	OutputFile     string
	CheckpointFile string
}

// Selectors holds the candidate-locator lists for every semantic field.
// The lists are data, not code: adapting to a markup change means
// editing these (or the SELECTORS_FILE override), not the pipeline.
type Selectors struct {
	ProductCards   []string `json:"product_cards"`
	ProductTitle   []string `json:"product_title"`
	ProductName    []string `json:"product_name"`
	ProductPrice   []string `json:"product_price"`
	ProductRating  []string `json:"product_rating"`
	ReviewCount    []string `json:"review_count"`
	ReviewsSection []string `json:"reviews_section"`
	ReviewItems    []string `json:"review_items"`
	ReviewerName   []string `json:"reviewer_name"`
	ReviewRating   []string `json:"review_rating"`
	ReviewText     []string `json:"review_text"`
	ReviewDate     []string `json:"review_date"`
	HelpfulVotes   []string `json:"helpful_votes"`
	LoadMore       []string `json:"load_more_buttons"`
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	UserAgents     []string
	ProxyServer    string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Addr   string
	Stream string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Scraper: ScraperConfig{
			Brand:                getEnvOrDefault("TARGET_BRAND", "lancome"),
			MarketNames:          getStringSliceOrDefault("MARKETS", []string{"vietnam", "saudi_arabia"}),
			MaxProductsPerMarket: getIntOrDefault("MAX_PRODUCTS_PER_MARKET", 20),
			MaxReviewsPerProduct: getIntOrDefault("MAX_REVIEWS_PER_PRODUCT", 100),
			FallbackLinkLimit:    getIntOrDefault("FALLBACK_LINK_LIMIT", 10),
			ScrollPasses:         getIntOrDefault("SCROLL_PASSES", 5),
			ProductPathMarker:    getEnvOrDefault("PRODUCT_PATH_MARKER", "/product/"),
			MinDelay:             getDurationOrDefault("MIN_DELAY", 1*time.Second),
			MaxDelay:             getDurationOrDefault("MAX_DELAY", 3*time.Second),
			ProductDelayMin:      getDurationOrDefault("PRODUCT_DELAY_MIN", 5*time.Second),
			ProductDelayMax:      getDurationOrDefault("PRODUCT_DELAY_MAX", 10*time.Second),
			PageLoadTimeout:      getDurationOrDefault("PAGE_LOAD_TIMEOUT", 30*time.Second),
			ElementTimeout:       getDurationOrDefault("ELEMENT_WAIT_TIMEOUT", 10*time.Second),
			MaxRetries:           getIntOrDefault("MAX_RETRIES", 3),
			RetryDelay:           getDurationOrDefault("RETRY_DELAY", 5*time.Second),
			MinReviewLength:      getIntOrDefault("MIN_REVIEW_LENGTH", 10),
			MaxReviewLength:      getIntOrDefault("MAX_REVIEW_LENGTH", 5000),
			OutputFile:           getEnvOrDefault("OUTPUT_FILE", "tiktok_shop_reviews.csv"),
			CheckpointFile:       getEnvOrDefault("CHECKPOINT_FILE", "checkpoint.json"),
		},
		Selectors: DefaultSelectors(),
		Markets:   DefaultMarkets(),
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			UserAgents:     getStringSliceOrDefault("SCRAPER_USER_AGENTS", defaultUserAgents()),
			ProxyServer:    getEnvOrDefault("PROXY_URL", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", ""),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "tiktok_reviews"),
		},
		Redis: RedisConfig{
			Addr:   getEnvOrDefault("REDIS_ADDR", ""),
			Stream: getEnvOrDefault("REDIS_STREAM", "stream:review_runs"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	if path := os.Getenv("SELECTORS_FILE"); path != "" {
		selectors, err := LoadSelectors(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load selectors file: %w", err)
		}
		cfg.Selectors = selectors
	}

	return cfg, nil
}

// LoadSelectors reads a candidate-locator override file. Fields left
// empty in the file keep their compiled-in defaults.
func LoadSelectors(path string) (Selectors, error) {
	selectors := DefaultSelectors()

	data, err := os.ReadFile(path)
	if err != nil {
		return selectors, err
	}

	if err := json.Unmarshal(data, &selectors); err != nil {
		return selectors, fmt.Errorf("invalid selectors JSON: %w", err)
	}

	return selectors, nil
}

func (c *Config) Validate() error {
	s := &c.Scraper

	if s.Brand == "" {
		return fmt.Errorf("TARGET_BRAND must not be empty")
	}

	if len(s.MarketNames) == 0 {
		return fmt.Errorf("MARKETS must name at least one market")
	}

	for _, name := range s.MarketNames {
		if _, ok := c.Markets[name]; !ok {
			return fmt.Errorf("unknown market: %s", name)
		}
	}

	if s.MinDelay > s.MaxDelay {
		return fmt.Errorf("MIN_DELAY cannot be greater than MAX_DELAY")
	}

	if s.ProductDelayMin > s.ProductDelayMax {
		return fmt.Errorf("PRODUCT_DELAY_MIN cannot be greater than PRODUCT_DELAY_MAX")
	}

	if s.MinReviewLength < 0 || s.MinReviewLength > s.MaxReviewLength {
		return fmt.Errorf("invalid review length bounds [%d, %d]", s.MinReviewLength, s.MaxReviewLength)
	}

	if s.MaxProductsPerMarket < 1 {
		return fmt.Errorf("MAX_PRODUCTS_PER_MARKET must be at least 1")
	}

	if s.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be at least 1")
	}

	return nil
}

// Market resolves a configured market name. Unknown names are a fatal
// configuration error, caught before any browser session starts.
func (c *Config) Market(name string) (Market, error) {
	market, ok := c.Markets[name]
	if !ok {
		return Market{}, fmt.Errorf("unknown market: %s", name)
	}
	return market, nil
}

func DefaultMarkets() map[string]Market {
	return map[string]Market{
		"vietnam": {
			Code:     "vn",
			Locale:   "vi-VN",
			Currency: "VND",
			Timezone: "Asia/Ho_Chi_Minh",
			BaseURL:  "https://shop.tiktok.com/vn",
		},
		"saudi_arabia": {
			Code:     "sa",
			Locale:   "ar-SA",
			Currency: "SAR",
			Timezone: "Asia/Riyadh",
			BaseURL:  "https://shop.tiktok.com/sa",
		},
	}
}

func DefaultSelectors() Selectors {
	return Selectors{
		ProductCards: []string{
			".product-card",
			"[data-testid*='product']",
			".item-card",
			".goods-card",
			"a[href*='/product/']",
		},
		ProductTitle: []string{
			"h1",
			".product-title",
			"[data-testid*='title']",
			".goods-title",
		},
		ProductName: []string{
			".product-name",
			".item-title",
			"h3",
			"h4",
		},
		ProductPrice: []string{
			".price",
			".product-price",
			".cost",
			"[data-testid*='price']",
		},
		ProductRating: []string{
			".rating",
			".star-rating",
		},
		ReviewCount: []string{
			".review-count",
			".reviews",
		},
		ReviewsSection: []string{
			".reviews-section",
			".review-list",
			"[data-testid*='review']",
			".comment-section",
		},
		ReviewItems: []string{
			".review-item",
			".comment-item",
			".feedback-item",
			"[data-testid*='review-item']",
		},
		ReviewerName: []string{
			".reviewer-name",
			".username",
			".author",
			"[data-testid*='username']",
		},
		ReviewRating: []string{
			".rating",
			".star-rating",
			".score",
			"[data-testid*='rating']",
		},
		ReviewText: []string{
			".review-text",
			".comment-text",
			".content",
			"[data-testid*='content']",
		},
		ReviewDate: []string{
			".review-date",
			".timestamp",
			".date",
			"[data-testid*='date']",
		},
		HelpfulVotes: []string{
			".helpful-count",
			".likes",
			".thumbs-up",
		},
		LoadMore: []string{
			".load-more",
			".show-more",
			"button[data-testid*='load']",
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func defaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/120.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/120.0",
	}
}
