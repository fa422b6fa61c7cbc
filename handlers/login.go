package handlers

import (
	goerrors "errors"
	"time"

	"cleanco-server/auth"
	"cleanco-server/config"
	"cleanco-server/database"
	"cleanco-server/errors"
	"cleanco-server/middleware"
	"cleanco-server/model"

	"github.com/gofiber/fiber/v2"
)

// IssueAccessToken signs a token for the posted email and sets it as an
// httpOnly cookie. In password mode the credentials are checked first.
func (h *Handler) IssueAccessToken(c *fiber.Ctx) error {
	creds := new(model.Credentials)
	if err := c.BodyParser(creds); err != nil {
		return errors.RaiseBadRequestError(c, "incorrect input for credentials")
	}
	if err := h.validator.Struct(creds); err != nil {
		return errors.RaiseBadRequestError(c, err)
	}

	if h.cfg.AuthMode == config.AuthModePassword {
		user, err := h.store.GetUserData(c.UserContext(), creds.Email)
		switch {
		case goerrors.Is(err, database.ErrNotFound):
			h.metrics.AuthFailures.WithLabelValues("unknown_user").Inc()
			return errors.RaiseUnauthorizedError(c, "invalid credentials")
		case err != nil:
			return h.storeFailure(c, "get_user", err)
		}
		if !auth.IsPasswordHashCorrect(user.HashedPassword, creds.Password) {
			h.metrics.AuthFailures.WithLabelValues("wrong_password").Inc()
			return errors.RaiseUnauthorizedError(c, "invalid credentials")
		}
	}

	token, claims, err := h.tokens.Issue(creds.Email)
	if err != nil {
		h.log.Error("Failed to sign access token", "request_id", c.Locals("requestid"), "error", err)
		return errors.RaiseInternalServerError(c, nil)
	}
	h.metrics.TokensIssued.Inc()

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt.Time,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})

	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) Register(c *fiber.Ctx) error {
	reg := new(model.Registration)
	if err := c.BodyParser(reg); err != nil {
		return errors.RaiseBadRequestError(c, "incorrect input for registration")
	}
	if err := h.validator.Struct(reg); err != nil {
		return errors.RaiseBadRequestError(c, err)
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		h.log.Error("Failed to hash password", "request_id", c.Locals("requestid"), "error", err)
		return errors.RaiseInternalServerError(c, nil)
	}

	user := &model.User{Email: reg.Email, HashedPassword: hash}
	if err := h.store.CreateUser(c.UserContext(), user); err != nil {
		if goerrors.Is(err, database.ErrConflict) {
			return errors.RaiseConflictError(c, "email is already registered")
		}
		return h.storeFailure(c, "create_user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// Logout revokes the current token until it expires and clears the cookie.
func (h *Handler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.Identity(c)
	if !ok {
		return errors.RaiseUnauthorizedError(c, nil)
	}

	until := time.Now().Add(h.tokens.TTL())
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := h.revoker.Revoke(c.UserContext(), claims.ID, until); err != nil {
		h.log.Error("Failed to revoke token", "request_id", c.Locals("requestid"), "error", err)
		return errors.RaiseUnavailableError(c, "token revocation failed")
	}

	c.ClearCookie(h.cfg.CookieName)
	return c.JSON(fiber.Map{"success": true})
}
