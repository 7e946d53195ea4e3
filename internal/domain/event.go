package domain

import (
	"strings"
	"time"
)

// Event weights applied by the trending scorer. Unknown event types fall
// back to WeightOther.
const (
	WeightView  = 1.0
	WeightClick = 3.0
	WeightShare = 5.0
	WeightOther = 0.5
)

// Recognized event types.
const (
	EventView  = "view"
	EventClick = "click"
	EventShare = "share"
)

// Event is a single recorded user interaction with an article. Events are
// immutable once recorded and must reference an article that exists at
// write time.
type Event struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id"`
	UserID    string    `json:"user_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"user_lat"`
	Longitude float64   `json:"user_lon"`
}

// Weight returns the engagement weight for the event's type. The match is
// case-insensitive; unrecognized types get WeightOther.
func (e Event) Weight() float64 {
	switch strings.ToLower(e.EventType) {
	case EventView:
		return WeightView
	case EventClick:
		return WeightClick
	case EventShare:
		return WeightShare
	default:
		return WeightOther
	}
}
