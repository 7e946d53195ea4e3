// Command loader bulk-loads a JSON article dump into the database,
// atomically replacing the existing articles and their events.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/jonesrussell/contextual-news/internal/config"
	"github.com/jonesrussell/contextual-news/internal/domain"
	"github.com/jonesrussell/contextual-news/internal/logger"
	"github.com/jonesrussell/contextual-news/internal/storage"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

const dbPingTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: loader <articles.json>")
		return exitFailure
	}

	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitFailure
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return exitFailure
	}
	defer func() { _ = log.Sync() }()

	articles, err := readArticles(os.Args[1])
	if err != nil {
		log.Error("Failed to read article dump", logger.Error(err))
		return exitFailure
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to open database", logger.Error(err))
		return exitFailure
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping database", logger.Error(err))
		return exitFailure
	}

	store := storage.NewArticleStore(db, log)
	inserted, err := store.ReplaceAll(context.Background(), articles)
	if err != nil {
		log.Error("Failed to replace articles", logger.Error(err))
		return exitFailure
	}

	log.Info("Articles loaded",
		logger.Int("read", len(articles)),
		logger.Int("inserted", inserted),
	)
	return exitSuccess
}

// jsonArticle mirrors domain.Article but tolerates publication dates
// without a timezone suffix.
type jsonArticle struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	URL             string   `json:"url"`
	PublicationDate string   `json:"publication_date"`
	SourceName      string   `json:"source_name"`
	Category        []string `json:"category"`
	RelevanceScore  float64  `json:"relevance_score"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
}

func readArticles(path string) ([]domain.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw []jsonArticle
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	articles := make([]domain.Article, 0, len(raw))
	for i, r := range raw {
		published, err := parseDate(r.PublicationDate)
		if err != nil {
			return nil, fmt.Errorf("article %d (%s): %w", i, r.ID, err)
		}
		articles = append(articles, domain.Article{
			ID:              r.ID,
			Title:           r.Title,
			Description:     r.Description,
			URL:             r.URL,
			PublicationDate: published,
			SourceName:      r.SourceName,
			Category:        r.Category,
			RelevanceScore:  r.RelevanceScore,
			Latitude:        r.Latitude,
			Longitude:       r.Longitude,
		})
	}
	return articles, nil
}

// parseDate accepts RFC 3339 and bare ISO 8601 timestamps, which the
// article dumps use interchangeably.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable publication_date %q", s)
}
