package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cleanco-server/auth"
	"cleanco-server/config"
	"cleanco-server/database"
	"cleanco-server/events"
	"cleanco-server/handlers"
	"cleanco-server/logger"
	"cleanco-server/metrics"
	"cleanco-server/router"
	"cleanco-server/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// closableStore is what the server needs from a store plus teardown.
type closableStore interface {
	handlers.Store
	Close(ctx context.Context) error
}

type Application struct {
	cfg       *config.Config
	log       *logger.Logger
	server    *fiber.App
	store     closableStore
	redis     *redis.Client
	publisher events.Publisher
}

// New connects every backing service and builds the HTTP app. Anything
// opened before a failure is closed again.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	a := &Application{cfg: cfg, log: log}
	if err := a.init(ctx); err != nil {
		a.closeResources(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *Application) init(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	a.store = store

	var revoker auth.Revoker = auth.NopRevoker{}
	if cfg.RevocationEnabled() {
		a.redis = auth.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := auth.PingRedis(ctx, a.redis); err != nil {
			return err
		}
		revoker = auth.NewRedisRevoker(a.redis)
		log.Info("Token revocation enabled", "redis_addr", cfg.RedisAddr)
	}

	a.publisher = events.NopPublisher{}
	if cfg.EventsEnabled() {
		publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return err
		}
		a.publisher = publisher
	}

	v, err := validation.New()
	if err != nil {
		return fmt.Errorf("failed to build validator: %w", err)
	}

	m := metrics.New()
	h := handlers.New(handlers.Deps{
		Config:    cfg,
		Store:     a.store,
		Tokens:    auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.AccessTokenTTL),
		Revoker:   revoker,
		Publisher: a.publisher,
		Validator: v,
		Metrics:   m,
		Log:       log,
	})
	a.server = router.New(cfg, h, revoker, m, log)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (closableStore, error) {
	switch cfg.StoreDriver {
	case config.StoreLocal:
		store, err := database.OpenLocal(cfg.LocalDBPath)
		if err != nil {
			return nil, err
		}
		log.Info("Using local JSON store", "path", cfg.LocalDBPath)
		return store, nil
	default:
		store, err := database.DBInit(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// Run serves until SIGINT/SIGTERM or a listener failure, then shuts down.
func (a *Application) Run() error {
	serverErrors := make(chan error, 1)

	go func() {
		a.log.Info("Starting HTTP server", "address", a.cfg.ListenAddr())
		serverErrors <- a.server.Listen(a.cfg.ListenAddr())
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		a.closeResources(context.Background())
		return fmt.Errorf("HTTP server failed: %w", err)

	case sig := <-shutdown:
		a.log.Info("Shutdown signal received", "signal", sig.String())
		return a.Shutdown()
	}
}

func (a *Application) Shutdown() error {
	a.log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := a.server.ShutdownWithContext(ctx); err != nil {
		a.log.Error("Server shutdown failed", "error", err)
		shutdownErr = err
	}
	a.closeResources(ctx)

	a.log.Info("Server stopped gracefully")
	return shutdownErr
}

// App exposes the fiber app, mainly for tests.
func (a *Application) App() *fiber.App {
	return a.server
}

func (a *Application) closeResources(ctx context.Context) {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Error("Failed to close event publisher", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("Failed to close Redis client", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(ctx); err != nil {
			a.log.Error("Failed to close store", "error", err)
		}
	}
}
