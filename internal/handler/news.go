// Package handler contains the gin handlers for the news API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/contextual-news/internal/intent"
	"github.com/jonesrussell/contextual-news/internal/logger"
	"github.com/jonesrussell/contextual-news/internal/service"
	"github.com/jonesrussell/contextual-news/internal/trending"
)

var (
	errMissingQuery    = errors.New("query parameter is required")
	errMissingLocation = errors.New("lat and lon parameters are required")
)

// NewsHandler serves the news retrieval endpoints.
type NewsHandler struct {
	news   *service.News
	logger logger.Logger
}

// NewNewsHandler creates a NewsHandler.
func NewNewsHandler(news *service.News, log logger.Logger) *NewsHandler {
	return &NewsHandler{news: news, logger: log}
}

// HandleQuery answers a free-text query, dispatching on the analyzed
// intent. Location parameters are optional; a nearby-intent query without
// them is rejected.
func (h *NewsHandler) HandleQuery(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingQuery.Error()})
		return
	}

	lat, lon, hasLocation := optionalLatLon(c)

	result, err := h.news.Unified(c.Request.Context(), query, lat, lon, hasLocation)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleTrending returns trending articles around the given location.
func (h *NewsHandler) HandleTrending(c *gin.Context) {
	lat, lon, ok := requireLatLon(c)
	if !ok {
		return
	}
	radius := parseFloat(c, "radius", service.TrendingRadiusKm)
	limit := parseLimit(c)

	articles, err := h.news.Trending(c.Request.Context(), lat, lon, radius, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// HandleNearby returns articles published closest to the given location.
func (h *NewsHandler) HandleNearby(c *gin.Context) {
	lat, lon, ok := requireLatLon(c)
	if !ok {
		return
	}
	radius := parseFloat(c, "radius", service.DefaultRadiusKm)
	limit := parseLimit(c)

	articles, err := h.news.Nearby(c.Request.Context(), lat, lon, radius, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// HandleCategory returns articles for a category, newest first.
func (h *NewsHandler) HandleCategory(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category parameter is required"})
		return
	}

	articles, err := h.news.ByCategory(c.Request.Context(), category, parseLimit(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// HandleSource returns articles from a named source, newest first.
func (h *NewsHandler) HandleSource(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source parameter is required"})
		return
	}

	articles, err := h.news.BySource(c.Request.Context(), source, parseLimit(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// HandleScore returns articles at or above a relevance score threshold.
func (h *NewsHandler) HandleScore(c *gin.Context) {
	minScore := parseFloat(c, "min_score", service.DefaultMinScore)

	articles, err := h.news.ByScore(c.Request.Context(), minScore, parseLimit(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// HandleSearch returns articles matching a free-text term by relevance.
func (h *NewsHandler) HandleSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingQuery.Error()})
		return
	}

	articles, err := h.news.Search(c.Request.Context(), query, parseLimit(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

func (h *NewsHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLocationRequired),
		errors.Is(err, trending.ErrInvalidRadius):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, intent.ErrInvalidAnalysis):
		c.JSON(http.StatusBadGateway, gin.H{"error": "query analysis failed"})
	default:
		h.logger.Error("Request failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// requireLatLon parses mandatory lat/lon parameters, writing a 400 itself
// when they are absent or malformed.
func requireLatLon(c *gin.Context) (lat, lon float64, ok bool) {
	lat, lon, ok = optionalLatLon(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingLocation.Error()})
	}
	return lat, lon, ok
}

func optionalLatLon(c *gin.Context) (lat, lon float64, ok bool) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return 0, 0, false
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

func parseFloat(c *gin.Context, name string, fallback float64) float64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return service.DefaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return service.DefaultLimit
	}
	return limit
}
