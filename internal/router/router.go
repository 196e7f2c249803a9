package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eduquery-api/internal/config"
	"github.com/noah-isme/eduquery-api/internal/dashboard"
	"github.com/noah-isme/eduquery-api/internal/handler"
	"github.com/noah-isme/eduquery-api/internal/middleware"
	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	SchoolHandler    *handler.SchoolHandler
	SearchHandler    *handler.SearchHandler
	AnalyticsHandler *handler.AnalyticsHandler
	Dashboard        *dashboard.Handler
	JWTMiddleware    fiber.Handler
	Database         handler.Pinger
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Database))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		app.Post("/login", middleware.RateLimit("login", cfg.LoginRateLimit, time.Minute), deps.AuthHandler.Login)
	}

	if deps.SearchHandler != nil {
		deps.SearchHandler.Register(app.Group("/api/search"))
	}

	if deps.SchoolHandler != nil {
		deps.SchoolHandler.Register(app.Group("/api/schools", jwtMiddleware))
	}

	if deps.AnalyticsHandler != nil {
		analytics := app.Group("/api/analytics", jwtMiddleware)
		deps.AnalyticsHandler.RegisterAdmin(analytics, middleware.RequireRole(models.RoleAdmin))
		deps.AnalyticsHandler.Register(analytics)
	}

	if deps.Dashboard != nil {
		deps.Dashboard.Register(app)
	}
}
