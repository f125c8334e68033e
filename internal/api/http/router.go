package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/slot-swap-service/internal/api/http/handlers"
	"github.com/spec-kit/slot-swap-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Slots          *handlers.SlotsHandler
	Swaps          *handlers.SwapsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Users.Signup)
	authGroup.Post("/login", cfg.Users.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/slots", cfg.Slots.Create)
	protected.Get("/slots", cfg.Slots.ListOwn)
	protected.Get("/slots/swappable", cfg.Slots.ListSwappable)
	protected.Put("/slots/:id", cfg.Slots.Update)
	protected.Delete("/slots/:id", cfg.Slots.Delete)

	protected.Post("/swaps", cfg.Swaps.Request)
	protected.Get("/swaps", cfg.Swaps.List)
	protected.Post("/swaps/:id/response", cfg.Swaps.Respond)
}
