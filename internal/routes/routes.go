// Package routes defines the API routing configuration.
// It wires handlers to paths and applies the authentication, permission
// and rate-limit middleware each group needs.
package routes

import (
	"time"

	"merchantapi/internal/handlers"
	"merchantapi/internal/metrics"
	"merchantapi/internal/middleware"
	"merchantapi/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Dependencies bundles everything SetupRoutes mounts.
type Dependencies struct {
	Auth           *handlers.AuthHandler
	Merchants      *handlers.MerchantHandler
	Health         *handlers.HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
	// nil disables /metrics
	Metrics        *metrics.Prometheus
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/health", deps.Health.HealthCheck)
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Handler())
	}

	api := app.Group("/api/v1")

	auth := api.Group("/auth", authLimiter(deps.AuthRateLimit, deps.AuthRateWindow))
	auth.Post("/register", deps.Auth.Register)
	auth.Post("/login", deps.Auth.Login)

	merchants := api.Group("/merchants", deps.AuthMiddleware.Handler)
	read := middleware.HasPermission(models.PermissionMerchantRead)
	write := middleware.HasPermission(models.PermissionMerchantWrite)
	merchants.Get("/", read, deps.Merchants.List)
	merchants.Get("/:id", read, deps.Merchants.Get)
	merchants.Post("/", write, deps.Merchants.Create)
	merchants.Put("/:id", write, deps.Merchants.Update)
	merchants.Delete("/:id", write, deps.Merchants.Delete)
}

func authLimiter(limit int, window time.Duration) fiber.Handler {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
}
