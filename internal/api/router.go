package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/smartcompute/monitoring-system/internal/api/handler"
	"github.com/smartcompute/monitoring-system/internal/api/middleware"
	"github.com/smartcompute/monitoring-system/internal/backup"
	"github.com/smartcompute/monitoring-system/internal/core/domain"
	"github.com/smartcompute/monitoring-system/internal/core/service"
	"github.com/smartcompute/monitoring-system/internal/infrastructure/config"
	mongodb "github.com/smartcompute/monitoring-system/internal/infrastructure/db/mongo"
)

// Deps carries the long-lived components the router wires into handlers.
// They are constructed in cmd so the event dispatcher and the HTTP surface
// share the same service instances.
type Deps struct {
	DB           *mongo.Database
	Redis        *redis.Client
	Dispatcher   handler.EventDispatcher
	IncidentRepo *mongodb.IncidentRepository
	Orchestrator *service.Orchestrator
	Catalog      backup.CatalogStore
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("smartcompute"))

	// --- Dependencies ---
	authRepo := mongodb.NewAuthRepository(deps.DB)
	authService := service.NewAuthService(authRepo, cfg.JWTSecret, 24*time.Hour)
	authHandler := handler.NewAuthHandler(authService)

	incidentService := service.NewIncidentService(deps.IncidentRepo, deps.Log)
	incidentHandler := handler.NewIncidentHandler(incidentService, deps.IncidentRepo, deps.Orchestrator)
	eventHandler := handler.NewEventHandler(deps.Dispatcher)
	backupHandler := handler.NewBackupHandler(deps.Catalog)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(cfg.JWTSecret))

	events := v1.Group("/events",
		middleware.RBAC(domain.RoleAdmin, domain.RoleAnalyst),
		middleware.RateLimit(cfg.Triage.IngestRatePerSec, cfg.Triage.IngestBurst))
	events.POST("", eventHandler.Receive)
	events.POST("/batch", eventHandler.ReceiveBatch)

	incidents := v1.Group("/incidents", middleware.RBAC(domain.RoleAdmin, domain.RoleAnalyst))
	incidents.POST("", incidentHandler.Create)
	incidents.GET("", incidentHandler.List)
	incidents.GET("/:incident_id", incidentHandler.Get)
	incidents.POST("/:incident_id/status", incidentHandler.Transition)
	incidents.GET("/:incident_id/route", incidentHandler.Route)

	backups := v1.Group("/backups", middleware.RBAC(domain.RoleAdmin))
	backups.GET("/latest", backupHandler.Latest)
	backups.GET("/:backup_id", backupHandler.Get)

	return e
}
