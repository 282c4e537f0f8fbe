package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/officelunch/attendance-api/internal/api/handler"
	"github.com/officelunch/attendance-api/internal/api/middleware"
	"github.com/officelunch/attendance-api/internal/core/domain"
	"github.com/officelunch/attendance-api/internal/core/ports"
	"github.com/officelunch/attendance-api/internal/infrastructure/http/handlers"
)

// Dependencies is everything the public API needs. Now defaults to time.Now
// and Registerer to the default Prometheus registry.
type Dependencies struct {
	Auth       ports.AuthService
	Attendance ports.AttendanceService
	Reports    ports.ReportService
	Notifier   ports.HeadcountNotifier
	Checks     map[string]handlers.Checker
	JWTSecret  string
	Logger     zerolog.Logger
	Now        func() time.Time
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.RequestLoggerWithConfig(requestLogger(deps.Logger)))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "attendance",
		Registerer: deps.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	attendanceHandler := handler.NewAttendanceHandler(deps.Attendance, deps.Now)
	chefHandler := handler.NewChefHandler(deps.Attendance, deps.Now)
	adminHandler := handler.NewAdminHandler(deps.Reports, deps.Notifier, deps.Attendance.Location(), deps.Now)

	authMiddleware := middleware.Auth(deps.JWTSecret, deps.Auth)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// --- Users ---
	users := api.Group("/users", authMiddleware)
	users.GET("/me", authHandler.Me)
	users.PUT("/me/notifications", authHandler.UpdateNotifications)

	// --- Attendance ---
	attendance := api.Group("/attendance", authMiddleware, middleware.RBAC(domain.RoleEmployee, domain.RoleAdmin))
	attendance.POST("/mark", attendanceHandler.Mark)
	attendance.GET("/today", attendanceHandler.Today)
	attendance.GET("/history", attendanceHandler.History)
	attendance.GET("/stats", attendanceHandler.Stats)
	attendance.GET("/date/:date", attendanceHandler.GetByDate)
	attendance.DELETE("/date/:date", attendanceHandler.DeleteByDate)

	// --- Chef ---
	chef := api.Group("/chef", authMiddleware, middleware.RBAC(domain.RoleChef, domain.RoleAdmin))
	chef.GET("/today-count", chefHandler.TodayCount)

	// --- Admin ---
	admin := api.Group("/admin", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/users", adminHandler.ListUsers)
	admin.PATCH("/users/:id", adminHandler.UpdateUser)
	admin.GET("/dashboard/stats", adminHandler.DashboardStats)
	admin.GET("/attendance/reports", adminHandler.Reports)
	admin.GET("/attendance/analytics", adminHandler.Analytics)
	admin.POST("/notifications/headcount", adminHandler.TriggerHeadcount)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- API docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}
}
