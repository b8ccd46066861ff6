package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"teamchat/domain"
	"teamchat/infrastructure/rest"
	"teamchat/internal"
	"teamchat/repositories"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern ensures all 'defer' statements (like database cleanup) run before the
// process exits and keeps the initialization logic testable.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & HTTP surface
	messages := repositories.NewMessageRepository(db, log)
	roster := repositories.NewRosterRepository()
	notifications := repositories.NewNotificationRepository()

	// The reference deliverer always succeeds; a real push gateway
	// plugs in here.
	deliverer := rest.DelivererFunc(func(_ context.Context, _ domain.Message) error {
		return nil
	})

	server := rest.NewServer(
		log, messages, roster, notifications,
		deliverer,
		[]byte(config.JWTSecret),
		config.PageLimitMax,
		config.MaxRetries,
	)

	if config.SeedDemo {
		if err = seedDemo(log, config, messages, roster, notifications); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. HTTP server with graceful shutdown
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:         address,
		Handler:      server.Handler(),
		ReadTimeout:  config.HTTPTimeout,
		WriteTimeout: config.HTTPTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting REST server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err = <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
