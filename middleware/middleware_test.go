package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"cleanco-server/auth"
	"cleanco-server/config"
	"cleanco-server/logger"
	"cleanco-server/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

type stubRevoker struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevoker) Revoke(context.Context, string, time.Time) error { return nil }

func (s *stubRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	return s.revoked[id], s.err
}

func testConfig() *config.Config {
	return &config.Config{AccessTokenSecret: testSecret, CookieName: "token"}
}

func protectedApp(revoker auth.Revoker, m *metrics.Metrics) *fiber.App {
	app := fiber.New()
	app.Get("/me", Authorize(testConfig(), revoker, m, logger.Discard()), func(c *fiber.Ctx) error {
		claims, ok := Identity(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(claims.Email)
	})
	return app
}

func get(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/me", nil)
	if token != "" {
		req.Header.Set("Cookie", "token="+token)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(res.Body)
	require.NoError(t, err)
	return res.StatusCode, buf.String()
}

func TestAuthorize(t *testing.T) {
	m := metrics.New()
	app := protectedApp(auth.NopRevoker{}, m)

	valid, _, err := auth.NewTokenIssuer(testSecret, time.Hour).Issue("A@x.com")
	require.NoError(t, err)
	wrongSecret, _, err := auth.NewTokenIssuer("other-secret", time.Hour).Issue("a@x.com")
	require.NoError(t, err)
	expired, _, err := auth.NewTokenIssuer(testSecret, -time.Minute).Issue("a@x.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		code  int
	}{
		{"valid token", valid, fiber.StatusOK},
		{"missing cookie", "", fiber.StatusUnauthorized},
		{"wrong secret", wrongSecret, fiber.StatusUnauthorized},
		{"expired", expired, fiber.StatusUnauthorized},
		{"garbage", "not-a-jwt", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := get(t, app, tt.token)
			assert.Equal(t, tt.code, code)
			if code == fiber.StatusOK {
				assert.Equal(t, "a@x.com", body)
			} else {
				var env map[string]any
				require.NoError(t, json.Unmarshal([]byte(body), &env))
				assert.Equal(t, "error", env["status"])
			}
		})
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthFailures.WithLabelValues("missing_token")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AuthFailures.WithLabelValues("invalid_token")))
}

func TestAuthorize_Revoked(t *testing.T) {
	token, claims, err := auth.NewTokenIssuer(testSecret, time.Hour).Issue("a@x.com")
	require.NoError(t, err)

	m := metrics.New()
	app := protectedApp(&stubRevoker{revoked: map[string]bool{claims.ID: true}}, m)

	code, _ := get(t, app, token)
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthFailures.WithLabelValues("revoked")))
}

func TestAuthorize_RevokerDown(t *testing.T) {
	token, _, err := auth.NewTokenIssuer(testSecret, time.Hour).Issue("a@x.com")
	require.NoError(t, err)

	app := protectedApp(&stubRevoker{err: errors.New("redis down")}, metrics.New())

	code, _ := get(t, app, token)
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
}

func TestIdentity_NoToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := Identity(c)
		assert.False(t, ok)
		return c.SendStatus(fiber.StatusNoContent)
	})

	res, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, res.StatusCode)
}

func TestRequestLogging(t *testing.T) {
	var out bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Output: &out})

	app := fiber.New()
	app.Use(requestid.New(), RequestLogging(log))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadGateway, "upstream") })

	_, err := app.Test(httptest.NewRequest("GET", "/ok", nil), -1)
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "/ok", first["path"])
	assert.Equal(t, 200.0, first["status"])
	assert.NotEmpty(t, first["request_id"])

	assert.Equal(t, "ERROR", second["level"])
	assert.Equal(t, 502.0, second["status"])
}

func TestRequestMetrics(t *testing.T) {
	m := metrics.New()
	app := fiber.New()
	app.Use(RequestMetrics(m))
	app.Delete("/booking/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, id := range []string{"a", "b", "c"} {
		_, err := app.Test(httptest.NewRequest("DELETE", "/booking/"+id, nil), -1)
		require.NoError(t, err)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("DELETE", "/booking/:id", "200")))
}
