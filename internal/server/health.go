package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the status of a health check.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the health endpoint response body.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the result of a single named health check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthChecker performs one health check.
type HealthChecker func() CheckResult

// HealthOptions configures the health endpoints.
type HealthOptions struct {
	ServiceName    string
	ServiceVersion string
	Checks         map[string]HealthChecker
}

// RegisterHealthRoutes adds GET and HEAD /health endpoints.
func RegisterHealthRoutes(router *gin.Engine, opts HealthOptions) {
	router.GET("/health", healthHandler(opts))
	router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

func healthHandler(opts HealthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: opts.ServiceName,
			Version: opts.ServiceVersion,
		}

		if len(opts.Checks) > 0 {
			response.Checks = make(map[string]CheckResult, len(opts.Checks))
			for name, check := range opts.Checks {
				result := check()
				response.Checks[name] = result

				if result.Status == HealthStatusUnhealthy {
					response.Status = HealthStatusUnhealthy
				} else if result.Status == HealthStatusDegraded && response.Status == HealthStatusHealthy {
					response.Status = HealthStatusDegraded
				}
			}
		}

		statusCode := http.StatusOK
		if response.Status == HealthStatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, response)
	}
}

// DatabaseHealthChecker reports database connectivity from a ping func.
func DatabaseHealthChecker(ping func() error) HealthChecker {
	return func() CheckResult {
		start := time.Now()
		err := ping()
		latency := time.Since(start)

		if err != nil {
			return CheckResult{
				Status:  HealthStatusUnhealthy,
				Message: "Database connection failed",
				Latency: latency.String(),
			}
		}
		return CheckResult{
			Status:  HealthStatusHealthy,
			Message: "Database connection OK",
			Latency: latency.String(),
		}
	}
}
