// Package service orchestrates the news retrieval flows: trending
// (cache, scorer, resolver, enrichment), the direct retrieval paths, and
// the intent-driven unified query.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/contextual-news/internal/domain"
	"github.com/jonesrussell/contextual-news/internal/geo"
	"github.com/jonesrussell/contextual-news/internal/intent"
	"github.com/jonesrussell/contextual-news/internal/logger"
	"github.com/jonesrussell/contextual-news/internal/telemetry"
)

// Query defaults. Trending searches a wider area than generic nearby
// lookups because engagement is sparser than article coordinates.
const (
	DefaultRadiusKm  = 10.0
	TrendingRadiusKm = 20.0
	DefaultLimit     = 5
	DefaultMinScore  = 0.7
)

// ErrLocationRequired is returned when a nearby-intent query arrives
// without usable coordinates.
var ErrLocationRequired = errors.New("location parameters (lat, lon) are required for nearby queries")

// ArticleFinder is the read side of the article store.
type ArticleFinder interface {
	ResolveMany(ctx context.Context, ids []string) ([]domain.Article, error)
	FetchByCategory(ctx context.Context, category string, limit int) ([]domain.Article, error)
	FetchBySource(ctx context.Context, source string, limit int) ([]domain.Article, error)
	FetchByScore(ctx context.Context, minScore float64, limit int) ([]domain.Article, error)
	SearchByText(ctx context.Context, term string, limit int) ([]domain.Article, error)
	FetchNearby(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]domain.Article, error)
}

// TrendingRanker computes the ranked article ids for a location.
type TrendingRanker interface {
	ComputeTrending(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]string, error)
}

// Enricher attaches summaries to resolved articles.
type Enricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.EnrichedArticle
}

// ResultCache stores enriched trending results under spatial keys.
type ResultCache interface {
	Key(lat, lon, radiusKm float64) string
	Get(key string) ([]domain.EnrichedArticle, bool)
	Set(key string, value []domain.EnrichedArticle)
}

// News is the service layer behind the HTTP handlers. All collaborators
// are injected once at process start.
type News struct {
	articles ArticleFinder
	ranker   TrendingRanker
	enricher Enricher
	cache    ResultCache
	analyzer intent.Analyzer
	log      logger.Logger
	metrics  *telemetry.Metrics
}

// NewNews creates the news service. analyzer and metrics may be nil when
// the unified query path or telemetry are not wired (tests).
func NewNews(
	articles ArticleFinder,
	ranker TrendingRanker,
	enricher Enricher,
	cache ResultCache,
	analyzer intent.Analyzer,
	log logger.Logger,
	metrics *telemetry.Metrics,
) *News {
	return &News{
		articles: articles,
		ranker:   ranker,
		enricher: enricher,
		cache:    cache,
		analyzer: analyzer,
		log:      log,
		metrics:  metrics,
	}
}

// Trending returns enriched trending articles around a location. Results
// are served from the spatial cache when a bucket-equivalent query was
// computed within the TTL; otherwise the full pipeline runs and its result
// is cached, including results with fallback summaries.
func (s *News) Trending(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.EnrichedArticle, error) {
	key := s.cache.Key(lat, lon, radiusKm)

	if cached, ok := s.cache.Get(key); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		s.log.Debug("Trending cache hit", logger.String("key", key))
		return cached, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}
	s.log.Debug("Trending cache miss, computing", logger.String("key", key))

	start := time.Now()

	ids, err := s.ranker.ComputeTrending(ctx, geo.Point{Latitude: lat, Longitude: lon}, radiusKm, limit)
	if err != nil {
		return nil, err
	}

	resolved, err := s.articles.ResolveMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve trending articles: %w", err)
	}

	enriched := s.enricher.Enrich(ctx, resolved)
	s.cache.Set(key, enriched)

	if s.metrics != nil {
		s.metrics.TrendingSeconds.Observe(time.Since(start).Seconds())
	}
	return enriched, nil
}

// Nearby returns enriched articles published within radiusKm, nearest
// first.
func (s *News) Nearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.EnrichedArticle, error) {
	articles, err := s.articles.FetchNearby(ctx, geo.Point{Latitude: lat, Longitude: lon}, radiusKm, limit)
	if err != nil {
		return nil, err
	}
	return s.enricher.Enrich(ctx, articles), nil
}

// ByCategory returns enriched articles for a category, newest first.
func (s *News) ByCategory(ctx context.Context, category string, limit int) ([]domain.EnrichedArticle, error) {
	articles, err := s.articles.FetchByCategory(ctx, category, limit)
	if err != nil {
		return nil, err
	}
	return s.enricher.Enrich(ctx, articles), nil
}

// BySource returns enriched articles matching a source name, newest first.
func (s *News) BySource(ctx context.Context, source string, limit int) ([]domain.EnrichedArticle, error) {
	articles, err := s.articles.FetchBySource(ctx, source, limit)
	if err != nil {
		return nil, err
	}
	return s.enricher.Enrich(ctx, articles), nil
}

// ByScore returns enriched articles with at least the given relevance
// score.
func (s *News) ByScore(ctx context.Context, minScore float64, limit int) ([]domain.EnrichedArticle, error) {
	articles, err := s.articles.FetchByScore(ctx, minScore, limit)
	if err != nil {
		return nil, err
	}
	return s.enricher.Enrich(ctx, articles), nil
}

// Search returns enriched articles matching a free-text term by relevance.
func (s *News) Search(ctx context.Context, term string, limit int) ([]domain.EnrichedArticle, error) {
	articles, err := s.articles.SearchByText(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	return s.enricher.Enrich(ctx, articles), nil
}

// UnifiedResult is the response of the intent-driven query path.
type UnifiedResult struct {
	Analysis domain.QueryAnalysis     `json:"query_analysis"`
	Articles []domain.EnrichedArticle `json:"articles"`
}

// Unified answers a free-text query: the analyzer determines the intent
// and the matching retrieval path runs with default radius and limit.
// lat/lon may be NaN-free zero values; they are only consulted for the
// nearby intent, where hasLocation gates the dispatch.
func (s *News) Unified(ctx context.Context, query string, lat, lon float64, hasLocation bool) (UnifiedResult, error) {
	analysis, err := s.analyzer.Analyze(ctx, query)
	if err != nil {
		return UnifiedResult{}, fmt.Errorf("unified query: %w", err)
	}

	articles, err := s.dispatch(ctx, query, analysis, lat, lon, hasLocation)
	if err != nil {
		return UnifiedResult{}, err
	}

	return UnifiedResult{
		Analysis: analysis,
		Articles: s.enricher.Enrich(ctx, articles),
	}, nil
}

func (s *News) dispatch(
	ctx context.Context,
	query string,
	analysis domain.QueryAnalysis,
	lat, lon float64,
	hasLocation bool,
) ([]domain.Article, error) {
	switch {
	case analysis.Intent == domain.IntentNearby && hasLocation:
		return s.articles.FetchNearby(ctx, geo.Point{Latitude: lat, Longitude: lon}, DefaultRadiusKm, DefaultLimit)
	case analysis.Intent == domain.IntentNearby:
		return nil, ErrLocationRequired
	case analysis.Intent == domain.IntentCategory && analysis.Category != "":
		return s.articles.FetchByCategory(ctx, analysis.Category, DefaultLimit)
	case analysis.Intent == domain.IntentSource && analysis.Source != "":
		return s.articles.FetchBySource(ctx, analysis.Source, DefaultLimit)
	case analysis.Intent == domain.IntentScore:
		return s.articles.FetchByScore(ctx, DefaultMinScore, DefaultLimit)
	default:
		term := query
		if len(analysis.Entities) > 0 {
			term = strings.Join(analysis.Entities, " ")
		}
		return s.articles.SearchByText(ctx, term, DefaultLimit)
	}
}
