package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"

	"github.com/alexfazio/hn-firecrawl-mcp/firecrawl"
	"github.com/alexfazio/hn-firecrawl-mcp/hn"
	"github.com/alexfazio/hn-firecrawl-mcp/mcp"
	"github.com/alexfazio/hn-firecrawl-mcp/readability"
	"github.com/alexfazio/hn-firecrawl-mcp/search"
)

func main() {
	// Matches the upstream convention of keeping the Firecrawl key in .env.
	_ = godotenv.Load()

	flagSet := flag.NewFlagSet("hn-firecrawl-mcp", flag.ExitOnError)

	var (
		firecrawlAPIKey  string
		firecrawlBaseURL string
		hnBaseURL        string
		scraperBackend   string
		maxDepth         int
		concurrency      int
		topN             int
		searchLimit      int
		maxContentChars  int
		hnTimeout        time.Duration
		scrapeTimeout    time.Duration
		logLevel         string
	)
	flagSet.StringVar(&firecrawlAPIKey, "firecrawl-api-key", "", "Firecrawl API key (env FIRECRAWL_API_KEY)")
	flagSet.StringVar(&firecrawlBaseURL, "firecrawl-base-url", "", "Override the Firecrawl API base URL")
	flagSet.StringVar(&hnBaseURL, "hn-base-url", "", "Override the Hacker News API base URL")
	flagSet.StringVar(&scraperBackend, "scraper", "firecrawl", "Scrape backend: firecrawl or local")
	flagSet.IntVar(&maxDepth, "max-depth", 5, "Comment tree resolution depth")
	flagSet.IntVar(&concurrency, "concurrency", 10, "Maximum simultaneous HN API requests")
	flagSet.IntVar(&topN, "top-n", 30, "Popular discussions listing size")
	flagSet.IntVar(&searchLimit, "search-limit", 10, "Default search result limit")
	flagSet.IntVar(&maxContentChars, "max-content-chars", 8000, "Scraped content truncation length")
	flagSet.DurationVar(&hnTimeout, "hn-timeout", 15*time.Second, "Per-request timeout for the HN API")
	flagSet.DurationVar(&scrapeTimeout, "scrape-timeout", 60*time.Second, "Per-request timeout for scrape calls")
	flagSet.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	if err := ff.Parse(flagSet, os.Args[1:], ff.WithEnvVars()); err != nil {
		slog.Error("failed to parse flags", "error", err)
		os.Exit(1)
	}

	// Stdout carries the protocol stream; everything else goes to stderr.
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	hnClient := hn.NewClient(hn.Config{
		BaseURL:     hnBaseURL,
		Concurrency: concurrency,
		Timeout:     hnTimeout,
	})

	var scraper search.Scraper
	switch scraperBackend {
	case "firecrawl":
		if firecrawlAPIKey == "" {
			logger.Warn("no FIRECRAWL_API_KEY configured; scrape and search calls will fail with an auth error")
		}
		scraper = firecrawl.NewClient(firecrawl.Config{
			APIKey:  firecrawlAPIKey,
			BaseURL: firecrawlBaseURL,
			Timeout: scrapeTimeout,
		})
	case "local":
		scraper = readability.NewScraper()
	default:
		logger.Error("unknown scraper backend", "scraper", scraperBackend)
		os.Exit(1)
	}

	searcher := search.NewOrchestrator(scraper, hnClient)
	searcher.DefaultLimit = searchLimit

	server := mcp.NewServer(hnClient, scraper, searcher, mcp.Options{
		MaxDepth:        maxDepth,
		TopN:            topN,
		SearchLimit:     searchLimit,
		MaxContentChars: maxContentChars,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting", "transport", "stdio", "scraper", scraperBackend)
	if err := server.Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
