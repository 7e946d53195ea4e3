// Package api assembles the HTTP server: routes, middleware, and health
// checks.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/contextual-news/internal/handler"
	"github.com/jonesrussell/contextual-news/internal/middleware"
	"github.com/jonesrussell/contextual-news/internal/telemetry"
)

// SetupRoutes configures all API routes. Health routes are registered by
// the server package.
func SetupRoutes(
	router *gin.Engine,
	newsHandler *handler.NewsHandler,
	eventHandler *handler.EventHandler,
	maxEventsPerMin int,
	rateLimitWindow time.Duration,
	done <-chan struct{},
) {
	router.GET("/metrics", gin.WrapH(telemetry.Handler()))

	v1 := router.Group("/api/v1")
	v1.GET("/news", newsHandler.HandleQuery)
	v1.GET("/news/trending", newsHandler.HandleTrending)
	v1.GET("/news/nearby", newsHandler.HandleNearby)
	v1.GET("/news/category", newsHandler.HandleCategory)
	v1.GET("/news/source", newsHandler.HandleSource)
	v1.GET("/news/score", newsHandler.HandleScore)
	v1.GET("/news/search", newsHandler.HandleSearch)

	// Event ingestion with bot filtering and rate limiting. Bot events are
	// acknowledged but never recorded.
	events := v1.Group("")
	events.Use(middleware.BotFilter())
	events.Use(middleware.RateLimiter(maxEventsPerMin, rateLimitWindow, done))
	events.POST("/events", eventHandler.HandleEvent)
}
