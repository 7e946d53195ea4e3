package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jonesrussell/contextual-news/internal/domain"
	"github.com/jonesrussell/contextual-news/internal/geo"
	"github.com/jonesrussell/contextual-news/internal/logger"
	"github.com/jonesrussell/contextual-news/internal/service"
)

type stubFinder struct {
	articles []domain.Article
	err      error

	resolveCalls  int
	resolvedIDs   []string
	nearbyCalls   int
	nearbyCenter  geo.Point
	nearbyRadius  float64
	categoryCalls int
	category      string
	sourceCalls   int
	source        string
	scoreCalls    int
	minScore      float64
	searchCalls   int
	searchTerm    string
}

func (f *stubFinder) ResolveMany(_ context.Context, ids []string) ([]domain.Article, error) {
	f.resolveCalls++
	f.resolvedIDs = ids
	return f.articles, f.err
}

func (f *stubFinder) FetchByCategory(_ context.Context, category string, _ int) ([]domain.Article, error) {
	f.categoryCalls++
	f.category = category
	return f.articles, f.err
}

func (f *stubFinder) FetchBySource(_ context.Context, source string, _ int) ([]domain.Article, error) {
	f.sourceCalls++
	f.source = source
	return f.articles, f.err
}

func (f *stubFinder) FetchByScore(_ context.Context, minScore float64, _ int) ([]domain.Article, error) {
	f.scoreCalls++
	f.minScore = minScore
	return f.articles, f.err
}

func (f *stubFinder) SearchByText(_ context.Context, term string, _ int) ([]domain.Article, error) {
	f.searchCalls++
	f.searchTerm = term
	return f.articles, f.err
}

func (f *stubFinder) FetchNearby(_ context.Context, center geo.Point, radiusKm float64, _ int) ([]domain.Article, error) {
	f.nearbyCalls++
	f.nearbyCenter = center
	f.nearbyRadius = radiusKm
	return f.articles, f.err
}

type stubRanker struct {
	ids   []string
	err   error
	calls int
}

func (r *stubRanker) ComputeTrending(_ context.Context, _ geo.Point, _ float64, _ int) ([]string, error) {
	r.calls++
	return r.ids, r.err
}

// passthroughEnricher copies articles without calling a model.
type passthroughEnricher struct {
	calls int
}

func (e *passthroughEnricher) Enrich(_ context.Context, articles []domain.Article) []domain.EnrichedArticle {
	e.calls++
	out := make([]domain.EnrichedArticle, 0, len(articles))
	for _, a := range articles {
		out = append(out, domain.EnrichedArticle{Title: a.Title, Summary: "s"})
	}
	return out
}

// mapCache is a plain map standing in for the spatial cache.
type mapCache struct {
	entries map[string][]domain.EnrichedArticle
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]domain.EnrichedArticle)}
}

func (c *mapCache) Key(lat, lon, radiusKm float64) string {
	return "k" // single bucket, enough for hit/miss behaviour
}

func (c *mapCache) Get(key string) ([]domain.EnrichedArticle, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapCache) Set(key string, value []domain.EnrichedArticle) {
	c.sets++
	c.entries[key] = value
}

type stubAnalyzer struct {
	analysis domain.QueryAnalysis
	err      error
}

func (a *stubAnalyzer) Analyze(_ context.Context, _ string) (domain.QueryAnalysis, error) {
	return a.analysis, a.err
}

func newService(f *stubFinder, r *stubRanker, e *passthroughEnricher, c *mapCache, a *stubAnalyzer) *service.News {
	return service.NewNews(f, r, e, c, a, logger.NewNop(), nil)
}

func TestTrending_MissComputesAndCaches(t *testing.T) {
	finder := &stubFinder{articles: []domain.Article{{ID: "a1", Title: "first"}}}
	ranker := &stubRanker{ids: []string{"a1"}}
	enricher := &passthroughEnricher{}
	cache := newMapCache()

	svc := newService(finder, ranker, enricher, cache, nil)

	got, err := svc.Trending(context.Background(), 43.65, -79.38, 20, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "first" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if ranker.calls != 1 {
		t.Fatalf("expected one ranker call, got %d", ranker.calls)
	}
	if len(finder.resolvedIDs) != 1 || finder.resolvedIDs[0] != "a1" {
		t.Fatalf("ranked ids not passed to resolver: %v", finder.resolvedIDs)
	}
	if cache.sets != 1 {
		t.Fatalf("expected result to be cached, sets=%d", cache.sets)
	}
}

func TestTrending_HitSkipsPipeline(t *testing.T) {
	finder := &stubFinder{articles: []domain.Article{{ID: "a1", Title: "first"}}}
	ranker := &stubRanker{ids: []string{"a1"}}
	enricher := &passthroughEnricher{}
	cache := newMapCache()

	svc := newService(finder, ranker, enricher, cache, nil)

	if _, err := svc.Trending(context.Background(), 43.65, -79.38, 20, 5); err != nil {
		t.Fatalf("first call: %v", err)
	}
	got, err := svc.Trending(context.Background(), 43.65, -79.38, 20, 5)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if ranker.calls != 1 {
		t.Fatalf("second call should be served from cache, ranker calls=%d", ranker.calls)
	}
	if finder.resolveCalls != 1 {
		t.Fatalf("second call should not hit the store, resolve calls=%d", finder.resolveCalls)
	}
	if len(got) != 1 || got[0].Title != "first" {
		t.Fatalf("cached result differs: %+v", got)
	}
}

func TestTrending_RankerErrorNotCached(t *testing.T) {
	wantErr := errors.New("scan failed")
	finder := &stubFinder{}
	ranker := &stubRanker{err: wantErr}
	cache := newMapCache()

	svc := newService(finder, ranker, &passthroughEnricher{}, cache, nil)

	_, err := svc.Trending(context.Background(), 43.65, -79.38, 20, 5)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected ranker error, got %v", err)
	}
	if cache.sets != 0 {
		t.Fatal("failed computation must not be cached")
	}
	if finder.resolveCalls != 0 {
		t.Fatal("resolver should not run after a ranker failure")
	}
}

func TestNearby_PassesCenterAndEnriches(t *testing.T) {
	finder := &stubFinder{articles: []domain.Article{{Title: "close"}}}
	enricher := &passthroughEnricher{}

	svc := newService(finder, &stubRanker{}, enricher, newMapCache(), nil)

	got, err := svc.Nearby(context.Background(), 45.42, -75.69, 10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finder.nearbyCenter.Latitude != 45.42 || finder.nearbyCenter.Longitude != -75.69 {
		t.Fatalf("wrong center: %+v", finder.nearbyCenter)
	}
	if finder.nearbyRadius != 10 {
		t.Fatalf("wrong radius: %v", finder.nearbyRadius)
	}
	if enricher.calls != 1 || len(got) != 1 {
		t.Fatalf("expected enriched result, calls=%d got=%+v", enricher.calls, got)
	}
}

func TestUnified_NearbyWithoutLocation(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: domain.QueryAnalysis{Intent: domain.IntentNearby}}
	finder := &stubFinder{}

	svc := newService(finder, &stubRanker{}, &passthroughEnricher{}, newMapCache(), analyzer)

	_, err := svc.Unified(context.Background(), "news near me", 0, 0, false)
	if !errors.Is(err, service.ErrLocationRequired) {
		t.Fatalf("expected ErrLocationRequired, got %v", err)
	}
	if finder.nearbyCalls != 0 {
		t.Fatal("nearby fetch must not run without coordinates")
	}
}

func TestUnified_NearbyWithLocation(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: domain.QueryAnalysis{Intent: domain.IntentNearby, Location: "Toronto"}}
	finder := &stubFinder{articles: []domain.Article{{Title: "local"}}}

	svc := newService(finder, &stubRanker{}, &passthroughEnricher{}, newMapCache(), analyzer)

	res, err := svc.Unified(context.Background(), "news near me", 43.65, -79.38, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finder.nearbyCalls != 1 {
		t.Fatalf("expected nearby dispatch, calls=%d", finder.nearbyCalls)
	}
	if finder.nearbyRadius != service.DefaultRadiusKm {
		t.Fatalf("expected default radius, got %v", finder.nearbyRadius)
	}
	if res.Analysis.Intent != domain.IntentNearby {
		t.Fatalf("analysis not propagated: %+v", res.Analysis)
	}
	if len(res.Articles) != 1 {
		t.Fatalf("expected one article, got %d", len(res.Articles))
	}
}

func TestUnified_CategoryDispatch(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: domain.QueryAnalysis{
		Intent:   domain.IntentCategory,
		Category: "Technology",
	}}
	finder := &stubFinder{}

	svc := newService(finder, &stubRanker{}, &passthroughEnricher{}, newMapCache(), analyzer)

	if _, err := svc.Unified(context.Background(), "tech news", 0, 0, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finder.categoryCalls != 1 || finder.category != "Technology" {
		t.Fatalf("expected category dispatch, calls=%d category=%q", finder.categoryCalls, finder.category)
	}
}

func TestUnified_ScoreDispatchUsesDefaultThreshold(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: domain.QueryAnalysis{Intent: domain.IntentScore}}
	finder := &stubFinder{}

	svc := newService(finder, &stubRanker{}, &passthroughEnricher{}, newMapCache(), analyzer)

	if _, err := svc.Unified(context.Background(), "top news", 0, 0, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finder.scoreCalls != 1 || finder.minScore != service.DefaultMinScore {
		t.Fatalf("expected score dispatch at default threshold, calls=%d min=%v", finder.scoreCalls, finder.minScore)
	}
}

func TestUnified_SearchFallbackJoinsEntities(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: domain.QueryAnalysis{
		Intent:   domain.IntentSearch,
		Entities: []string{"Elon Musk", "Twitter"},
	}}
	finder := &stubFinder{}

	svc := newService(finder, &stubRanker{}, &passthroughEnricher{}, newMapCache(), analyzer)

	if _, err := svc.Unified(context.Background(), "latest on Elon Musk and Twitter", 0, 0, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finder.searchTerm != "Elon Musk Twitter" {
		t.Fatalf("expected entity-joined search term, got %q", finder.searchTerm)
	}
}

func TestUnified_AnalyzerError(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("model unavailable")}
	finder := &stubFinder{}

	svc := newService(finder, &stubRanker{}, &passthroughEnricher{}, newMapCache(), analyzer)

	if _, err := svc.Unified(context.Background(), "anything", 0, 0, false); err == nil {
		t.Fatal("expected analyzer error to propagate")
	}
	if finder.searchCalls+finder.categoryCalls+finder.nearbyCalls != 0 {
		t.Fatal("no retrieval should run when analysis fails")
	}
}
