package middleware

import (
	"cleanco-server/auth"
	"cleanco-server/config"
	"cleanco-server/errors"
	"cleanco-server/logger"
	"cleanco-server/metrics"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

const IdentityKey = "identity"

// Authorize verifies the access token cookie and stores the parsed token
// under IdentityKey. Every failure, a missing cookie included, is a 401.
func Authorize(cfg *config.Config, revoker auth.Revoker, m *metrics.Metrics, log *logger.Logger) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(cfg.AccessTokenSecret),
		SigningMethod: "HS256",
		ContextKey:    IdentityKey,
		Claims:        &auth.Claims{},
		TokenLookup:   "cookie:" + cfg.CookieName,
		SuccessHandler: func(c *fiber.Ctx) error {
			claims, ok := Identity(c)
			if !ok {
				m.AuthFailures.WithLabelValues("invalid_claims").Inc()
				return errors.RaiseUnauthorizedError(c, nil)
			}

			revoked, err := revoker.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				log.Error("Token revocation check failed", "request_id", c.Locals("requestid"), "error", err)
				return errors.RaiseUnavailableError(c, "token revocation check failed")
			}
			if revoked {
				m.AuthFailures.WithLabelValues("revoked").Inc()
				return errors.RaiseUnauthorizedError(c, "token has been revoked")
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			reason := "invalid_token"
			if err.Error() == "Missing or malformed JWT" {
				reason = "missing_token"
			}
			m.AuthFailures.WithLabelValues(reason).Inc()
			log.Debug("Access token rejected", "request_id", c.Locals("requestid"), "reason", reason, "error", err)
			return errors.RaiseUnauthorizedError(c, nil)
		},
	})
}

// Identity returns the claims of the verified token, if any.
func Identity(c *fiber.Ctx) (*auth.Claims, bool) {
	token, ok := c.Locals(IdentityKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok || claims.Email == "" {
		return nil, false
	}
	return claims, true
}
