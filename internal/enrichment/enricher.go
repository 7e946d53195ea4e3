// Package enrichment attaches generated summaries to resolved articles.
// Summary generation runs concurrently per article; a failed generation
// never fails the batch, the affected article just carries a fallback
// placeholder.
package enrichment

import (
	"context"
	"sync"

	"github.com/jonesrussell/contextual-news/internal/domain"
	"github.com/jonesrussell/contextual-news/internal/logger"
	"github.com/jonesrussell/contextual-news/internal/telemetry"
)

// FallbackSummary replaces summaries that could not be generated.
const FallbackSummary = "Summary not available."

// Summarizer generates a short summary for an article. Implementations may
// fail per item; the enricher contains the failure.
type Summarizer interface {
	Summarize(ctx context.Context, title, description string) (string, error)
}

// Enricher fans summary generation out across articles.
type Enricher struct {
	summarizer Summarizer
	log        logger.Logger
	metrics    *telemetry.Metrics
}

// NewEnricher creates an Enricher. metrics may be nil.
func NewEnricher(summarizer Summarizer, log logger.Logger, metrics *telemetry.Metrics) *Enricher {
	return &Enricher{
		summarizer: summarizer,
		log:        log,
		metrics:    metrics,
	}
}

// summaryResult carries either a generated summary or the fallback marker,
// never an error: failures are resolved to the fallback where they occur.
type summaryResult struct {
	text     string
	fallback bool
}

// Enrich returns one enriched article per input article, in input order.
// Each summary is generated in its own goroutine; sibling failures are
// independent and no cancellation propagates between them.
func (e *Enricher) Enrich(ctx context.Context, articles []domain.Article) []domain.EnrichedArticle {
	if len(articles) == 0 {
		return []domain.EnrichedArticle{}
	}

	results := make([]summaryResult, len(articles))
	var wg sync.WaitGroup

	for i, article := range articles {
		wg.Add(1)
		go func(i int, article domain.Article) {
			defer wg.Done()
			results[i] = e.summarize(ctx, article)
		}(i, article)
	}
	wg.Wait()

	enriched := make([]domain.EnrichedArticle, 0, len(articles))
	for i, article := range articles {
		enriched = append(enriched, domain.EnrichedArticle{
			Title:           article.Title,
			Description:     article.Description,
			URL:             article.URL,
			PublicationDate: article.PublicationDate,
			SourceName:      article.SourceName,
			Category:        article.Category,
			RelevanceScore:  article.RelevanceScore,
			Summary:         results[i].text,
			Fallback:        results[i].fallback,
		})
	}
	return enriched
}

func (e *Enricher) summarize(ctx context.Context, article domain.Article) summaryResult {
	summary, err := e.summarizer.Summarize(ctx, article.Title, article.Description)
	if err != nil {
		e.log.Warn("Summary generation failed, using fallback",
			logger.String("title", article.Title),
			logger.Error(err),
		)
		if e.metrics != nil {
			e.metrics.SummaryFallbacks.Inc()
		}
		return summaryResult{text: FallbackSummary, fallback: true}
	}

	if e.metrics != nil {
		e.metrics.SummariesGenerated.Inc()
	}
	return summaryResult{text: summary}
}
