package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/contactrelay/contactrelay/internal/config"
	"github.com/contactrelay/contactrelay/internal/database"
	"github.com/contactrelay/contactrelay/internal/email"
	"github.com/contactrelay/contactrelay/internal/handler"
	"github.com/contactrelay/contactrelay/internal/logger"
	"github.com/contactrelay/contactrelay/internal/middleware"
	"github.com/contactrelay/contactrelay/internal/router"
	"github.com/contactrelay/contactrelay/internal/service"
)

func main() {
	// A missing .env is fine; the process environment still applies
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", handler.Version).Msg("starting contactrelay server")

	// Connect to Redis when configured; rate limiting is off otherwise
	var (
		counter middleware.Counter
		pinger  handler.Pinger
	)
	if cfg.Redis.Enabled() {
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()
		counter, pinger = rdb, rdb
		log.Info().Msg("connected to Redis")
	} else {
		log.Warn().Msg("REDIS_URL not set, rate limiting disabled")
	}

	// Select the mail transport
	sender, err := email.NewSender(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize mail transport")
	}

	relay := service.NewRelayService(sender, cfg.Contact, log)
	if err := relay.Check(); err != nil {
		// Submissions fail with configuration_error until this is fixed
		log.Warn().Err(err).Str("transport", relay.Transport()).Msg("mail transport is not fully configured")
	} else {
		log.Info().Str("transport", relay.Transport()).Msg("mail transport ready")
	}

	// Initialize handlers
	h := handler.New(relay, pinger, log, cfg)

	// Initialize middleware
	mw := middleware.New(counter, log, cfg)

	// Set up router
	r := router.New(h, mw, log, cfg)

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
