package handlers

import (
	"context"
	"strings"
	"time"

	"cleanco-server/errors"
	"cleanco-server/events"
	"cleanco-server/middleware"
	"cleanco-server/model"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultPublishTimeout = 5 * time.Second

func (h *Handler) CreateBooking(c *fiber.Ctx) error {
	newBooking := new(model.Booking)
	if err := c.BodyParser(newBooking); err != nil {
		return errors.RaiseBadRequestError(c, "incorrect input for booking parameters")
	}

	newBooking.Id = primitive.NilObjectID
	newBooking.CreatedAt = time.Time{}
	newBooking.Email = strings.ToLower(strings.TrimSpace(newBooking.Email))
	newBooking.Service = strings.TrimSpace(newBooking.Service)
	newBooking.CustomerName = strings.TrimSpace(newBooking.CustomerName)

	if err := h.validator.Struct(newBooking); err != nil {
		return errors.RaiseBadRequestError(c, err)
	}

	result, err := h.store.CreateBooking(c.UserContext(), newBooking)
	if err != nil {
		return h.storeFailure(c, "create_booking", err)
	}
	h.metrics.BookingsCreated.Inc()

	h.publish(c, events.NewEvent(events.TypeBookingCreated, result.InsertedId, newBooking.Email, newBooking.Service))

	return c.JSON(result)
}

// CancelBooking removes a booking by id. Deleting an unknown id is not an
// error, the result just reports a zero count.
func (h *Handler) CancelBooking(c *fiber.Ctx) error {
	bookingId := c.Params("bookingId")

	result, err := h.store.DeleteBooking(c.UserContext(), bookingId)
	if err != nil {
		return h.storeFailure(c, "delete_booking", err)
	}

	if result.DeletedCount > 0 {
		h.metrics.BookingsCancelled.Inc()
		h.publish(c, events.NewEvent(events.TypeBookingCancelled, bookingId, "", ""))
	}

	return c.JSON(result)
}

// GetUserBookings lists the bookings of the caller. The email query
// defaults to the token's email; asking for anybody else's is forbidden.
func (h *Handler) GetUserBookings(c *fiber.Ctx) error {
	claims, ok := middleware.Identity(c)
	if !ok {
		return errors.RaiseUnauthorizedError(c, nil)
	}

	tokenEmail := strings.ToLower(strings.TrimSpace(claims.Email))
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		email = tokenEmail
	}
	if email != tokenEmail {
		h.metrics.AuthFailures.WithLabelValues("email_mismatch").Inc()
		return errors.RaiseForbiddenError(c, "bookings of another user cannot be listed")
	}

	bookings, err := h.store.ListBookings(c.UserContext(), email)
	if err != nil {
		return h.storeFailure(c, "list_bookings", err)
	}
	return c.JSON(bookings)
}

// publish never fails the request: the booking is already stored.
func (h *Handler) publish(c *fiber.Ctx, event events.Event) {
	timeout := h.cfg.StoreTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
	defer cancel()

	if err := h.publisher.Publish(ctx, event); err != nil {
		h.metrics.EventPublishFails.Inc()
		h.log.Warn("Failed to publish booking event",
			"request_id", c.Locals("requestid"),
			"event_id", event.ID,
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}
