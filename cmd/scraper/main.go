package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/aymanedev/tiktok-shop-scraper/internal/api"
	"github.com/aymanedev/tiktok-shop-scraper/internal/browser"
	"github.com/aymanedev/tiktok-shop-scraper/internal/checkpoint"
	"github.com/aymanedev/tiktok-shop-scraper/internal/config"
	"github.com/aymanedev/tiktok-shop-scraper/internal/database"
	"github.com/aymanedev/tiktok-shop-scraper/internal/dom"
	"github.com/aymanedev/tiktok-shop-scraper/internal/events"
	"github.com/aymanedev/tiktok-shop-scraper/internal/models"
	"github.com/aymanedev/tiktok-shop-scraper/internal/scraper"
	"github.com/aymanedev/tiktok-shop-scraper/internal/sink"
	"github.com/aymanedev/tiktok-shop-scraper/pkg/logger"
)

func main() {
	var (
		markets        = flag.String("markets", "", "Comma-separated market names to scrape (default: MARKETS env or all configured)")
		brand          = flag.String("brand", "", "Target brand to filter products by (default: TARGET_BRAND env)")
		output         = flag.String("output", "", "Output file path (default: OUTPUT_FILE env)")
		format         = flag.String("format", "csv", "Output format: csv or json")
		headless       = flag.Bool("headless", true, "Run browser in headless mode")
		checkpointPath = flag.String("checkpoint", "", "Checkpoint file path (default: CHECKPOINT_FILE env)")
		serveAddr      = flag.String("serve", "", "Address to serve run status on (e.g. :8080); disabled when empty")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *markets != "" {
		cfg.Scraper.MarketNames = splitList(*markets)
	}
	if *brand != "" {
		cfg.Scraper.Brand = *brand
	}
	if *output != "" {
		cfg.Scraper.OutputFile = *output
	}
	if *checkpointPath != "" {
		cfg.Scraper.CheckpointFile = *checkpointPath
	}
	cfg.Browser.Headless = *headless && cfg.Browser.Headless

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *format != "csv" && *format != "json" {
		log.Fatalf("Invalid output format: %s", *format)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting TikTok Shop review scraper",
		"brand", cfg.Scraper.Brand, "markets", cfg.Scraper.MarketNames)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgents:     cfg.Browser.UserAgents,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		ProxyServer:    cfg.Browser.ProxyServer,
	})
	if err != nil {
		logger.Error("Failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	newPage := scraper.PageFactory(func(market config.Market) (dom.Page, error) {
		return b.NewMarketPage(market.Locale, market.Timezone)
	})

	store := checkpoint.NewStore(cfg.Scraper.CheckpointFile, logger)
	pipeline := scraper.NewPipeline(cfg, newPage, store, logger)

	var publisher *events.Publisher
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()

		publisher = events.NewPublisher(client, cfg.Redis.Stream, logger)
		pipeline.OnMarketDone = func(market string, products, reviews int) {
			err := publisher.PublishMarketScraped(ctx, events.MarketScrapedPayload{
				RunID:       pipeline.Progress().RunID,
				Market:      market,
				Products:    products,
				ReviewCount: reviews,
			})
			if err != nil {
				logger.Error("Failed to publish market event", "market", market, "error", err)
			}
		}
	}

	if *serveAddr != "" {
		srv := api.NewServer(func() any { return pipeline.Progress() }, logger)
		go func() {
			logger.Info("Status API listening", "addr", *serveAddr)
			if err := http.ListenAndServe(*serveAddr, srv.Router()); err != nil {
				logger.Error("Status API stopped", "error", err)
			}
		}()
	}

	reviews, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("Run interrupted", "error", err, "reviews", len(reviews))
	}

	if err := writeResults(ctx, cfg, *format, reviews, logger); err != nil {
		logger.Error("Failed to write results", "error", err)
		os.Exit(1)
	}

	if publisher != nil {
		err := publisher.PublishRunCompleted(ctx, events.RunCompletedPayload{
			RunID:       pipeline.Progress().RunID,
			Brand:       cfg.Scraper.Brand,
			Markets:     cfg.Scraper.MarketNames,
			ReviewCount: len(reviews),
		})
		if err != nil {
			logger.Error("Failed to publish run event", "error", err)
		}
	}

	logger.Info("Scraping completed", "reviews", len(reviews))
}

func writeResults(ctx context.Context, cfg *config.Config, format string, reviews []models.Review, logger *slog.Logger) error {
	var out sink.Sink
	if format == "json" {
		out = sink.NewJSONSink(cfg.Scraper.OutputFile)
	} else {
		out = sink.NewCSVSink(cfg.Scraper.OutputFile)
	}

	if err := out.Write(ctx, reviews); err != nil {
		return err
	}
	logger.Info("Results written", "file", cfg.Scraper.OutputFile, "format", format)

	if cfg.Database.Host != "" {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := database.NewReviewRepository(db, logger)
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		if err := repo.Write(ctx, reviews); err != nil {
			return err
		}
		logger.Info("Results persisted to database", "reviews", len(reviews))
	}

	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
