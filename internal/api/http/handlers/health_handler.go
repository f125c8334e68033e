package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DependencyPinger reports reachability of a storage dependency.
type DependencyPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	backendName string
	backend     DependencyPinger
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version, backendName string, backend DependencyPinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, backendName: backendName, backend: backend}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking the snapshot backend.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "snapshot backend unavailable",
				"details": fiber.Map{h.backendName: err.Error()},
			},
		})
	}

	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": fiber.Map{h.backendName: "ok"},
	})
}
