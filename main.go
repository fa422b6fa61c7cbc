package main

import (
	"context"

	"cleanco-server/app"
	"cleanco-server/config"
	"cleanco-server/logger"
)

func main() {
	cfg := config.MustLoad()

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "cleanco",
	})
	log.Info("Configuration loaded", cfg.LogValues()...)

	application, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to start application", "error", err)
	}

	if err := application.Run(); err != nil {
		log.Fatal("Application stopped with error", "error", err)
	}
}
