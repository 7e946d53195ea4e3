package api

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/contextual-news/internal/config"
	"github.com/jonesrussell/contextual-news/internal/handler"
	"github.com/jonesrussell/contextual-news/internal/logger"
	"github.com/jonesrussell/contextual-news/internal/server"
)

// NewServer creates the HTTP server with all routes and a database health
// check wired in.
func NewServer(
	cfg *config.Config,
	db *sql.DB,
	newsHandler *handler.NewsHandler,
	eventHandler *handler.EventHandler,
	log logger.Logger,
	done <-chan struct{},
) *server.Server {
	rateLimitWindow := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second

	serverCfg := server.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Port:           cfg.Service.Port,
		Debug:          cfg.Service.Debug,
	}
	health := server.HealthOptions{
		Checks: map[string]server.HealthChecker{
			"database": server.DatabaseHealthChecker(db.Ping),
		},
	}

	return server.New(serverCfg, log, health, func(router *gin.Engine) {
		SetupRoutes(router, newsHandler, eventHandler,
			cfg.RateLimit.MaxEventsPerMinute, rateLimitWindow, done)
	})
}
