package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/contextual-news/internal/domain"
	"github.com/jonesrussell/contextual-news/internal/logger"
)

// ErrUnknownArticle is returned when an event references an article id
// that does not exist at write time.
var ErrUnknownArticle = errors.New("unknown article")

// EventStore appends and scans user interaction events. The log is
// append-only; events are never updated or deleted outside a bulk article
// reload.
type EventStore struct {
	db  *sql.DB
	log logger.Logger
}

// NewEventStore creates an EventStore.
func NewEventStore(db *sql.DB, log logger.Logger) *EventStore {
	return &EventStore{db: db, log: log}
}

// AppendEvent records an interaction event. The referenced article must
// exist when the event is written; otherwise ErrUnknownArticle is returned
// and nothing is stored. The id and timestamp are assigned here when unset.
func (s *EventStore) AppendEvent(ctx context.Context, event domain.Event) error {
	exists, err := s.articleExists(ctx, event.ArticleID)
	if err != nil {
		return err
	}
	if !exists {
		s.log.Warn("Rejected event for non-existent article",
			logger.String("article_id", event.ArticleID),
			logger.String("event_type", event.EventType),
		)
		return fmt.Errorf("append event for article %s: %w", event.ArticleID, ErrUnknownArticle)
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO user_events (id, article_id, user_id, event_type, timestamp, user_lat, user_lon) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7)",
		event.ID, event.ArticleID, event.UserID, event.EventType,
		event.Timestamp, event.Latitude, event.Longitude,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	s.log.Debug("Logged interaction event",
		logger.String("article_id", event.ArticleID),
		logger.String("event_type", event.EventType),
	)
	return nil
}

// ScanEventsSince returns all events recorded at or after since.
func (s *EventStore) ScanEventsSince(ctx context.Context, since time.Time) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, article_id, user_id, event_type, timestamp, user_lat, user_lon "+
			"FROM user_events WHERE timestamp >= $1 ORDER BY timestamp",
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var event domain.Event
		err := rows.Scan(
			&event.ID, &event.ArticleID, &event.UserID, &event.EventType,
			&event.Timestamp, &event.Latitude, &event.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return events, nil
}

func (s *EventStore) articleExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM articles WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article exists: %w", err)
	}
	return exists, nil
}
