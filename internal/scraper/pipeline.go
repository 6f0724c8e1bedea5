package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aymanedev/tiktok-shop-scraper/internal/checkpoint"
	"github.com/aymanedev/tiktok-shop-scraper/internal/config"
	"github.com/aymanedev/tiktok-shop-scraper/internal/models"
	"github.com/aymanedev/tiktok-shop-scraper/internal/ratelimit"
)

// MarketState tracks one market's position in the run.
type MarketState string

const (
	StatePending     MarketState = "pending"
	StateDiscovering MarketState = "discovering"
	StateHarvesting  MarketState = "harvesting_products"
	StateDone        MarketState = "done"
	StateFailed      MarketState = "failed"
)

// Progress is an immutable snapshot of the run, safe to hand to the
// status API while scraping continues.
type Progress struct {
	RunID             string                 `json:"run_id"`
	StartedAt         time.Time              `json:"started_at"`
	Markets           map[string]MarketState `json:"markets"`
	ProductsProcessed int                    `json:"products_processed"`
	ProductsTotal     int                    `json:"products_total"`
	ReviewsCollected  int                    `json:"reviews_collected"`
}

// Pipeline drives discovery and harvesting across the configured
// markets, strictly sequentially: one market, one product, one browser
// session at a time.
type Pipeline struct {
	cfg         *config.Config
	newPage     PageFactory
	discovery   *Discovery
	harvester   *Harvester
	checkpoints *checkpoint.Store
	limiter     *ratelimit.Limiter
	logger      *slog.Logger

	// OnMarketDone, when set, is invoked after each market finishes
	// successfully. Used to publish lifecycle events.
	OnMarketDone func(market string, products, reviews int)

	mu       sync.Mutex
	progress Progress
}

func NewPipeline(cfg *config.Config, newPage PageFactory, store *checkpoint.Store, logger *slog.Logger) *Pipeline {
	s := &cfg.Scraper

	markets := make(map[string]MarketState, len(s.MarketNames))
	for _, name := range s.MarketNames {
		markets[name] = StatePending
	}

	return &Pipeline{
		cfg:         cfg,
		newPage:     newPage,
		discovery:   NewDiscovery(cfg, logger),
		harvester:   NewHarvester(cfg, logger),
		checkpoints: store,
		limiter:     ratelimit.New(s.ProductDelayMin, s.ProductDelayMax),
		logger:      logger.With("component", "pipeline"),
		progress: Progress{
			RunID:     uuid.New().String(),
			StartedAt: time.Now(),
			Markets:   markets,
		},
	}
}

// Run executes the full pipeline and returns the deduplicated,
// validated aggregate. A failing market is logged and skipped; its
// contribution is whatever was collected before the failure.
func (p *Pipeline) Run(ctx context.Context) ([]models.Review, error) {
	aggregate := p.checkpoints.Load()

	// Products already present in the checkpoint are not re-harvested.
	harvested := make(map[string]struct{})
	for _, r := range aggregate {
		harvested[r.ProductURL] = struct{}{}
	}
	p.addReviews(len(aggregate))

	for _, name := range p.cfg.Scraper.MarketNames {
		if err := ctx.Err(); err != nil {
			return p.finalize(aggregate), err
		}

		discovered, collected, err := p.runMarket(ctx, name, harvested, &aggregate)
		if err != nil {
			p.setMarketState(name, StateFailed)
			p.logger.Error("market failed", "market", name, "error", err)
			continue
		}

		p.setMarketState(name, StateDone)
		p.logger.Info("market completed", "market", name, "reviews", collected)

		if p.OnMarketDone != nil {
			p.OnMarketDone(name, discovered, collected)
		}
	}

	return p.finalize(aggregate), nil
}

func (p *Pipeline) runMarket(ctx context.Context, name string, harvested map[string]struct{}, aggregate *[]models.Review) (int, int, error) {
	market, err := p.cfg.Market(name)
	if err != nil {
		return 0, 0, err
	}

	p.setMarketState(name, StateDiscovering)

	var products []models.Product
	err = ratelimit.Retry(ctx, p.cfg.Scraper.MaxRetries, p.cfg.Scraper.RetryDelay, func() error {
		page, err := p.newPage(market)
		if err != nil {
			return fmt.Errorf("failed to open page: %w", err)
		}
		defer page.Close()

		products, err = p.discovery.Discover(ctx, page, name, market)
		return err
	})
	if err != nil {
		return 0, 0, fmt.Errorf("discovery failed: %w", err)
	}

	p.logger.Info("discovered products", "market", name, "count", len(products))
	p.addProductsTotal(len(products))
	p.setMarketState(name, StateHarvesting)

	collected := 0
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return len(products), collected, err
		}

		if _, done := harvested[product.URL]; done {
			p.logger.Info("skipping already-harvested product", "url", product.URL)
			p.productProcessed()
			continue
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return len(products), collected, err
		}

		reviews := p.harvestProduct(ctx, market, product)
		harvested[product.URL] = struct{}{}

		*aggregate = append(*aggregate, reviews...)
		collected += len(reviews)
		p.productProcessed()
		p.addReviews(len(reviews))

		if err := p.checkpoints.Save(p.progressRunID(), *aggregate); err != nil {
			p.logger.Error("failed to save checkpoint", "error", err)
		}
	}

	return len(products), collected, nil
}

// harvestProduct opens one browser session for one product. Any
// failure is contained here; the pipeline moves on to the next
// product.
func (p *Pipeline) harvestProduct(ctx context.Context, market config.Market, product models.Product) []models.Review {
	page, err := p.newPage(market)
	if err != nil {
		p.logger.Error("failed to open page for product", "url", product.URL, "error", err)
		return nil
	}
	defer page.Close()

	reviews, err := p.harvester.Harvest(ctx, page, product)
	if err != nil {
		p.logger.Error("failed to harvest product", "url", product.URL, "error", err)
		return nil
	}

	return reviews
}

// finalize deduplicates the aggregate by review id and drops records
// whose text falls outside the configured length bounds.
func (p *Pipeline) finalize(aggregate []models.Review) []models.Review {
	s := &p.cfg.Scraper

	deduped := models.Dedupe(aggregate)

	valid := make([]models.Review, 0, len(deduped))
	for _, r := range deduped {
		if !r.Valid(s.MinReviewLength, s.MaxReviewLength) {
			p.logger.Debug("review rejected by length bounds",
				"review_id", r.ReviewID, "length", len(r.ReviewText))
			continue
		}
		valid = append(valid, r)
	}

	p.logger.Info("run finalized",
		"raw", len(aggregate), "deduplicated", len(deduped), "valid", len(valid))
	return valid
}

// Progress returns a point-in-time copy of the run state.
func (p *Pipeline) Progress() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := p.progress
	snapshot.Markets = make(map[string]MarketState, len(p.progress.Markets))
	for name, state := range p.progress.Markets {
		snapshot.Markets[name] = state
	}
	return snapshot
}

func (p *Pipeline) setMarketState(name string, state MarketState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress.Markets[name] = state
}

func (p *Pipeline) addProductsTotal(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress.ProductsTotal += n
}

func (p *Pipeline) productProcessed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress.ProductsProcessed++
}

func (p *Pipeline) addReviews(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress.ReviewsCollected += n
}

func (p *Pipeline) progressRunID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress.RunID
}
