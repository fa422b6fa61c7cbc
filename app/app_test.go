package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"cleanco-server/config"
	"cleanco-server/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:              "5000",
		StoreDriver:       config.StoreLocal,
		LocalDBPath:       filepath.Join(t.TempDir(), "clean-co.json"),
		AccessTokenSecret: "app-test-secret",
		AccessTokenTTL:    time.Hour,
		AuthMode:          config.AuthModeOpen,
		CookieName:        "token",
		CookieSameSite:    "Lax",
		CORSAllowOrigins:  "http://localhost:5000",
		StoreTimeout:      time.Second,
		ConnectTimeout:    time.Second,
		ShutdownTimeout:   time.Second,
	}
}

func TestNew_LocalStore(t *testing.T) {
	a, err := New(context.Background(), localConfig(t), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { a.closeResources(context.Background()) })

	res, err := a.App().Test(httptest.NewRequest("GET", "/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
}

func TestNew_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := localConfig(t)
	cfg.RedisAddr = mr.Addr()

	a, err := New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, a.redis)
	a.closeResources(context.Background())
}

func TestNew_RedisUnreachable(t *testing.T) {
	cfg := localConfig(t)
	cfg.RedisAddr = "127.0.0.1:1"

	a, err := New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
	assert.Nil(t, a)
}

func TestNew_KafkaConfigured(t *testing.T) {
	cfg := localConfig(t)
	cfg.KafkaBrokers = []string{"localhost:9092"}
	cfg.KafkaTopic = "bookings.events"

	a, err := New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	assert.NotNil(t, a.publisher)
	a.closeResources(context.Background())
}

func TestShutdown_NotStarted(t *testing.T) {
	a, err := New(context.Background(), localConfig(t), logger.Discard())
	require.NoError(t, err)
	assert.NoError(t, a.Shutdown())
}
