// Package trending implements the engagement-based trending score
// computation. Recent interaction events are aggregated into per-article
// scores weighted by event type and by linear distance decay from the
// query location.
package trending

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jonesrussell/contextual-news/internal/domain"
	"github.com/jonesrussell/contextual-news/internal/geo"
	"github.com/jonesrussell/contextual-news/internal/logger"
)

// WindowDays is the trailing event window considered by the scorer.
const WindowDays = 30

// ErrInvalidRadius is returned when the query radius is not positive.
// A zero radius would make the geo decay weight a division by zero.
var ErrInvalidRadius = errors.New("radius must be greater than zero")

// EventSource supplies interaction events recorded at or after a cutoff.
type EventSource interface {
	ScanEventsSince(ctx context.Context, since time.Time) ([]domain.Event, error)
}

// Scorer computes trending article rankings. It is stateless per call and
// safe for concurrent use.
type Scorer struct {
	events EventSource
	log    logger.Logger
	now    func() time.Time
}

// NewScorer creates a Scorer backed by the given event source.
func NewScorer(events EventSource, log logger.Logger) *Scorer {
	return &Scorer{
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// WithClock overrides the scorer's clock. Used by tests to pin the window
// cutoff.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// ComputeTrending returns up to limit article ids ranked by trending score
// around center. Events are kept when their distance from center is at most
// radiusKm (the boundary itself contributes a zero weight but is not
// excluded). Articles with equal scores keep the order in which they first
// appeared in the event scan. An empty window, an out-of-range event set,
// or limit <= 0 all yield an empty ranking, never an error.
func (s *Scorer) ComputeTrending(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]string, error) {
	if radiusKm <= 0 {
		return nil, fmt.Errorf("compute trending: %w", ErrInvalidRadius)
	}
	if limit <= 0 {
		return []string{}, nil
	}

	cutoff := s.now().AddDate(0, 0, -WindowDays)
	events, err := s.events.ScanEventsSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("scan events since %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if len(events) == 0 {
		return []string{}, nil
	}

	scores := make(map[string]float64)
	// ids records first-seen order so equal scores rank deterministically.
	ids := make([]string, 0, len(events))

	for _, event := range events {
		distance := geo.DistanceKm(center, geo.Point{
			Latitude:  event.Latitude,
			Longitude: event.Longitude,
		})
		if distance > radiusKm {
			continue
		}

		geoWeight := (radiusKm - distance) / radiusKm

		if _, seen := scores[event.ArticleID]; !seen {
			ids = append(ids, event.ArticleID)
		}
		scores[event.ArticleID] += event.Weight() * geoWeight
	}

	if len(ids) == 0 {
		return []string{}, nil
	}

	sort.SliceStable(ids, func(i, j int) bool {
		return scores[ids[i]] > scores[ids[j]]
	})

	if len(ids) > limit {
		ids = ids[:limit]
	}

	s.log.Debug("Computed trending ranking",
		logger.Int("events", len(events)),
		logger.Int("ranked_articles", len(ids)),
		logger.Float64("radius_km", radiusKm),
	)

	return ids, nil
}
