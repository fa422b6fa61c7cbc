package middleware

import (
	"time"

	"cleanco-server/logger"

	"github.com/gofiber/fiber/v2"
)

// RequestLogging logs every request once it has been answered. It relies on
// the requestid middleware running first.
func RequestLogging(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		args := []any{
			"request_id", c.Locals("requestid"),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.IP(),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("HTTP request completed", args...)
		case status >= fiber.StatusBadRequest:
			log.Warn("HTTP request completed", args...)
		default:
			log.Info("HTTP request completed", args...)
		}
		return err
	}
}
