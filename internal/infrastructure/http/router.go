package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/officelunch/attendance-api/internal/infrastructure/http/handlers"
)

// NewOpsRouter builds the operations listener: health probes and the
// Prometheus scrape endpoint, kept off the public API port.
func NewOpsRouter(checks map[string]handlers.Checker) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// --- Global middleware ---
	e.Use(middleware.Recover())

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(checks)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
