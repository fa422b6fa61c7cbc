package handlers

import (
	"context"
	"time"

	"cleanco-server/errors"

	"github.com/gofiber/fiber/v2"
)

const readinessTimeout = 2 * time.Second

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready reports whether the store answers a ping.
func (h *Handler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("Readiness check failed", "error", err)
		return errors.RaiseUnavailableError(c, "database is not reachable")
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
