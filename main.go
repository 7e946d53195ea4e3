package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/jonesrussell/contextual-news/internal/api"
	"github.com/jonesrussell/contextual-news/internal/cache"
	"github.com/jonesrussell/contextual-news/internal/config"
	"github.com/jonesrussell/contextual-news/internal/enrichment"
	"github.com/jonesrussell/contextual-news/internal/handler"
	"github.com/jonesrussell/contextual-news/internal/intent"
	"github.com/jonesrussell/contextual-news/internal/logger"
	"github.com/jonesrussell/contextual-news/internal/service"
	"github.com/jonesrussell/contextual-news/internal/storage"
	"github.com/jonesrussell/contextual-news/internal/telemetry"
	"github.com/jonesrussell/contextual-news/internal/trending"
)

// Database connection timeout.
const dbPingTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	db, err := connectDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	return runServer(cfg, log, db)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	configPath := config.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// connectDatabase opens and verifies a database connection.
func connectDatabase(cfg *config.Config, log logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)
	return db, nil
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(cfg *config.Config, log logger.Logger, db *sql.DB) int {
	metrics := telemetry.NewDefaultMetrics()

	articleStore := storage.NewArticleStore(db, log)
	eventStore := storage.NewEventStore(db, log)

	scorer := trending.NewScorer(eventStore, log)
	spatialCache := cache.NewSpatial(cfg.Cache.MaxEntries, cfg.Cache.TTL, cfg.Cache.GeohashPrecision)

	summarizer := enrichment.NewClaudeSummarizer(
		cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.Timeout)
	enricher := enrichment.NewEnricher(summarizer, log, metrics)
	analyzer := intent.NewClaudeAnalyzer(
		cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.Timeout)

	news := service.NewNews(articleStore, scorer, enricher, spatialCache, analyzer, log, metrics)

	newsHandler := handler.NewNewsHandler(news, log)
	eventHandler := handler.NewEventHandler(eventStore, log, metrics)

	// done signals background goroutines (rate limiter) on shutdown.
	done := make(chan struct{})
	defer close(done)

	srv := api.NewServer(cfg, db, newsHandler, eventHandler, log, done)

	log.Info("Contextual news service starting",
		logger.Int("port", cfg.Service.Port),
	)

	if err := srv.RunWithGracefulShutdown(context.Background()); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Contextual news service exited cleanly")
	return 0
}
