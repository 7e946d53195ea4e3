package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/contextual-news/internal/domain"
	"github.com/jonesrussell/contextual-news/internal/logger"
	"github.com/jonesrussell/contextual-news/internal/storage"
	"github.com/jonesrussell/contextual-news/internal/telemetry"
)

// EventHandler records user interaction events.
type EventHandler struct {
	events  *storage.EventStore
	logger  logger.Logger
	metrics *telemetry.Metrics
}

// NewEventHandler creates an EventHandler. metrics may be nil in tests.
func NewEventHandler(events *storage.EventStore, log logger.Logger, metrics *telemetry.Metrics) *EventHandler {
	return &EventHandler{events: events, logger: log, metrics: metrics}
}

type eventRequest struct {
	ArticleID string  `json:"article_id" binding:"required"`
	UserID    string  `json:"user_id"`
	EventType string  `json:"event_type" binding:"required"`
	Latitude  float64 `json:"user_lat"`
	Longitude float64 `json:"user_lon"`
}

// HandleEvent validates and appends one interaction event. Events from
// known bots are acknowledged but not recorded so they cannot inflate
// trending scores.
func (h *EventHandler) HandleEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id and event_type are required"})
		return
	}

	if c.GetBool("is_bot") {
		h.logger.Debug("Skipping event from bot user agent",
			logger.String("article_id", req.ArticleID),
		)
		c.JSON(http.StatusAccepted, gin.H{"status": "ignored"})
		return
	}

	event := domain.Event{
		ArticleID: req.ArticleID,
		UserID:    req.UserID,
		EventType: req.EventType,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}

	if err := h.events.AppendEvent(c.Request.Context(), event); err != nil {
		if errors.Is(err, storage.ErrUnknownArticle) {
			if h.metrics != nil {
				h.metrics.EventsRejected.Inc()
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown article_id"})
			return
		}
		h.logger.Error("Failed to record event", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if h.metrics != nil {
		h.metrics.EventsLogged.WithLabelValues(event.EventType).Inc()
	}
	c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
}
