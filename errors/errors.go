package errors

import (
	"errors"

	"cleanco-server/database"
	"cleanco-server/logger"

	"github.com/gofiber/fiber/v2"
)

func RaiseError(context *fiber.Ctx, status int, message string, data any) error {
	return context.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    data})
}

func RaiseUnauthorizedError(context *fiber.Ctx, data any) error {
	return RaiseError(context, fiber.StatusUnauthorized, "unauthorized access", data)
}

func RaiseForbiddenError(context *fiber.Ctx, data any) error {
	return RaiseError(context, fiber.StatusForbidden, "forbidden access", data)
}

func RaiseInternalServerError(context *fiber.Ctx, data any) error {
	return RaiseError(context, fiber.StatusInternalServerError, "internal error", data)
}

func RaiseBadRequestError(context *fiber.Ctx, data any) error {
	return RaiseError(context, fiber.StatusBadRequest, "bad request", data)
}

func RaiseNotFoundError(context *fiber.Ctx, data any) error {
	return RaiseError(context, fiber.StatusNotFound, "resource not found", data)
}

func RaiseConflictError(context *fiber.Ctx, data any) error {
	return RaiseError(context, fiber.StatusConflict, "resource already exists", data)
}

func RaiseUnavailableError(context *fiber.Ctx, data any) error {
	return RaiseError(context, fiber.StatusServiceUnavailable, "service unavailable", data)
}

// RaiseStoreError answers with the status matching a store failure.
// Internal details of unexpected failures are not sent to the client.
func RaiseStoreError(context *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, database.ErrInvalid):
		return RaiseBadRequestError(context, "malformed identifier")
	case errors.Is(err, database.ErrNotFound):
		return RaiseNotFoundError(context, nil)
	case errors.Is(err, database.ErrConflict):
		return RaiseConflictError(context, nil)
	case errors.Is(err, database.ErrUnavailable):
		return RaiseUnavailableError(context, "database is temporarily unavailable")
	default:
		return RaiseInternalServerError(context, nil)
	}
}

// Handler is the fiber ErrorHandler: errors returned by handlers or
// middleware end up here and are written with the same envelope.
func Handler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return RaiseError(c, fiberErr.Code, fiberErr.Message, nil)
		}

		log.Error("Unhandled request error",
			"request_id", c.Locals("requestid"),
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		return RaiseInternalServerError(c, nil)
	}
}
