package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger checks connectivity with the database
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health GET /health - liveness probe
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "identika",
	})
}

// Ready GET /ready - readiness probe, checks the database
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not ready",
			"error":  "database unreachable",
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
