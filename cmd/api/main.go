// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/app"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database"
	"github.com/your-org/ecommerce-core/internal/interfaces/http"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
	"github.com/your-org/ecommerce-core/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"driver":      cfg.Database.Driver,
	}).Info("Starting service")

	shutdownTracing, err := telemetry.InitTracing(cfg.Tracing, cfg.App.Version)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialise tracing")
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialise application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Stores.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("Database migration failed")
	}

	if cfg.IsDevelopment() {
		err := a.Stores.Seed(cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		switch {
		case errors.Is(err, database.ErrSeedUnsupported):
			log.WithField("driver", cfg.Database.Driver).Debug("Seeding not supported by driver, skipping")
		case err != nil:
			log.WithError(err).Warn("Data seeding failed")
		}
	}

	// finish anything a previous process left half-applied before serving
	if _, err := a.Journal.Replay(ctx, cfg.Journal.ReplayBatch); err != nil {
		log.WithError(err).Warn("Startup journal replay failed")
	}
	go a.Journal.StartReplayLoop(ctx, cfg.Journal.ReplayInterval, cfg.Journal.ReplayBatch)

	server := http.NewServer(a)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Info("All systems operational")

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully")
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.WithError(err).Warn("Failed to flush traces")
	}
	if err := a.Close(); err != nil {
		log.WithError(err).Warn("Failed to close backends")
	}

	log.Info("Server shutdown completed")
}
