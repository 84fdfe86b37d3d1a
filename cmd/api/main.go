package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradestats/adapters/api"
	"tradestats/adapters/samples"
	"tradestats/app"
	"tradestats/internal"
	"tradestats/internal/config"
	"tradestats/ports"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := run(appConfig, internal.NewLogger(appConfig.LogLevel)); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(appConfig *config.Config, logger *internal.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Query requests need a database; inline requests work without one.
	var source ports.SampleSource
	if appConfig.Database.URL != "" {
		db, err := samples.OpenDatabase(ctx, appConfig.Database.Driver, appConfig.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		source = samples.NewSQLSource(db, logger)
		logger.Info("Using %s sample source", source.Name())
	} else {
		logger.Info("DATABASE_URL not set, only inline samples are accepted")
	}

	service := app.NewComparisonService(source, appConfig.Analysis, appConfig.Plot, logger)
	server := api.NewServer(service, logger).HTTPServer(appConfig.Server)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting tradestats API on port %s", appConfig.Server.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
