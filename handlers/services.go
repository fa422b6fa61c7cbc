package handlers

import (
	"cleanco-server/errors"

	"github.com/gofiber/fiber/v2"
)

const rootMessage = "clean co server is running"

func (h *Handler) GetRoot(c *fiber.Ctx) error {
	return c.SendString(rootMessage)
}

func (h *Handler) GetServices(c *fiber.Ctx) error {
	services, err := h.store.ListServices(c.UserContext())
	if err != nil {
		return h.storeFailure(c, "list_services", err)
	}
	return c.JSON(services)
}

// storeFailure logs err and answers with the status of its category.
func (h *Handler) storeFailure(c *fiber.Ctx, operation string, err error) error {
	h.metrics.StoreErrors.WithLabelValues(operation).Inc()
	h.log.Error("Store operation failed",
		"request_id", c.Locals("requestid"),
		"operation", operation,
		"error", err,
	)
	return errors.RaiseStoreError(c, err)
}
