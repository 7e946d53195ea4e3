// Package storage provides the PostgreSQL repositories for articles and
// interaction events.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/jonesrussell/contextual-news/internal/domain"
	"github.com/jonesrussell/contextual-news/internal/geo"
	"github.com/jonesrussell/contextual-news/internal/logger"
)

// articleColumns is the column list shared by all article SELECTs.
const articleColumns = "id, title, description, url, publication_date, " +
	"source_name, category, relevance_score, latitude, longitude"

// ArticleStore reads and bulk-replaces articles. Individual articles are
// immutable; only the loader writes, and it replaces the whole table.
type ArticleStore struct {
	db  *sql.DB
	log logger.Logger
}

// NewArticleStore creates an ArticleStore.
func NewArticleStore(db *sql.DB, log logger.Logger) *ArticleStore {
	return &ArticleStore{db: db, log: log}
}

// Exists reports whether an article with the given id exists.
func (s *ArticleStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM articles WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article exists: %w", err)
	}
	return exists, nil
}

// ResolveMany maps an ordered list of article ids to article records,
// preserving the input order. Ids with no matching record are silently
// dropped, so the result may be shorter than the input.
func (s *ArticleStore) ResolveMany(ctx context.Context, ids []string) ([]domain.Article, error) {
	if len(ids) == 0 {
		return []domain.Article{}, nil
	}

	query := "SELECT " + articleColumns + " FROM articles WHERE id = ANY($1)"
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("resolve articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	byID := make(map[string]domain.Article, len(ids))
	for rows.Next() {
		article, scanErr := scanArticle(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		byID[article.ID] = article
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolve articles: %w", err)
	}

	resolved := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		if article, ok := byID[id]; ok {
			resolved = append(resolved, article)
		}
	}
	return resolved, nil
}

// FetchByCategory returns the newest articles tagged with category.
func (s *ArticleStore) FetchByCategory(ctx context.Context, category string, limit int) ([]domain.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles " +
		"WHERE $1 = ANY(category) ORDER BY publication_date DESC LIMIT $2"
	return s.queryArticles(ctx, query, category, limit)
}

// FetchBySource returns the newest articles whose source name contains
// source (case-insensitive).
func (s *ArticleStore) FetchBySource(ctx context.Context, source string, limit int) ([]domain.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles " +
		"WHERE source_name ILIKE '%' || $1 || '%' ORDER BY publication_date DESC LIMIT $2"
	return s.queryArticles(ctx, query, source, limit)
}

// FetchByScore returns articles with relevance_score at or above minScore,
// highest first.
func (s *ArticleStore) FetchByScore(ctx context.Context, minScore float64, limit int) ([]domain.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles " +
		"WHERE relevance_score >= $1 ORDER BY relevance_score DESC LIMIT $2"
	return s.queryArticles(ctx, query, minScore, limit)
}

// SearchByText returns articles whose title or description contains term,
// ranked by relevance score.
func (s *ArticleStore) SearchByText(ctx context.Context, term string, limit int) ([]domain.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles " +
		"WHERE title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%' " +
		"ORDER BY relevance_score DESC LIMIT $2"
	return s.queryArticles(ctx, query, term, limit)
}

// FetchNearby returns articles published within radiusKm of center, nearest
// first. Distance is computed in process; the article table is small enough
// that a full scan beats maintaining a spatial index.
func (s *ArticleStore) FetchNearby(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]domain.Article, error) {
	all, err := s.queryArticles(ctx, "SELECT "+articleColumns+" FROM articles")
	if err != nil {
		return nil, err
	}

	type candidate struct {
		article  domain.Article
		distance float64
	}

	nearby := make([]candidate, 0, len(all))
	for _, article := range all {
		d := geo.DistanceKm(center, geo.Point{
			Latitude:  article.Latitude,
			Longitude: article.Longitude,
		})
		if d <= radiusKm {
			nearby = append(nearby, candidate{article: article, distance: d})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].distance < nearby[j].distance
	})

	if limit > 0 && len(nearby) > limit {
		nearby = nearby[:limit]
	}

	articles := make([]domain.Article, 0, len(nearby))
	for _, c := range nearby {
		articles = append(articles, c.article)
	}
	return articles, nil
}

// ReplaceAll atomically clears the article and event tables and inserts the
// given articles. Articles with an empty id are skipped with a warning.
// Returns the number of articles inserted.
func (s *ArticleStore) ReplaceAll(ctx context.Context, articles []domain.Article) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Events reference articles, so they go first.
	if _, err := tx.ExecContext(ctx, "DELETE FROM user_events"); err != nil {
		return 0, fmt.Errorf("clear user_events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM articles"); err != nil {
		return 0, fmt.Errorf("clear articles: %w", err)
	}

	const insert = "INSERT INTO articles (" + articleColumns + ") " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)"

	inserted := 0
	for i, article := range articles {
		if article.ID == "" {
			s.log.Warn("Skipping article with empty id",
				logger.Int("index", i),
				logger.String("title", article.Title),
			)
			continue
		}

		_, err := tx.ExecContext(ctx, insert,
			article.ID, article.Title, article.Description, article.URL,
			article.PublicationDate, article.SourceName, pq.Array(article.Category),
			article.RelevanceScore, article.Latitude, article.Longitude,
		)
		if err != nil {
			return 0, fmt.Errorf("insert article %s: %w", article.ID, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace: %w", err)
	}
	return inserted, nil
}

// queryArticles runs a SELECT over articleColumns and scans all rows.
func (s *ArticleStore) queryArticles(ctx context.Context, query string, args ...any) ([]domain.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]domain.Article, 0)
	for rows.Next() {
		article, scanErr := scanArticle(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	return articles, nil
}

func scanArticle(rows *sql.Rows) (domain.Article, error) {
	var article domain.Article
	var category pq.StringArray

	err := rows.Scan(
		&article.ID, &article.Title, &article.Description, &article.URL,
		&article.PublicationDate, &article.SourceName, &category,
		&article.RelevanceScore, &article.Latitude, &article.Longitude,
	)
	if err != nil {
		return domain.Article{}, fmt.Errorf("scan article: %w", err)
	}

	article.Category = category
	return article, nil
}
