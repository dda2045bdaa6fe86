package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coupon-command/internal/cache"
	"coupon-command/internal/config"
	"coupon-command/internal/database"
	"coupon-command/internal/handler"
	"coupon-command/internal/metrics"
	"coupon-command/internal/repository"
	"coupon-command/internal/router"
	"coupon-command/internal/service"

	"github.com/bwmarrin/snowflake"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting coupon command API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	couponRepo := repository.NewCouponRepository(pool, logger)
	configRepo := repository.NewCommandConfigRepository(pool, logger)
	limitRepo := repository.NewCommandLimitRepository(pool, logger)
	usageRepo := repository.NewUsageRecordRepository(pool, logger)

	// Command lookups go through Redis when it is enabled and reachable
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("addr", cfg.Redis.Addr).
				Msg("failed to connect to redis, command lookups will hit the database")
		} else {
			defer client.Close()
			ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
			configRepo = cache.NewCommandConfigCache(configRepo, client, ttl, logger)
			logger.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", ttl).Msg("command lookup cache enabled")
		}
	}

	metrics.MustRegister()

	node, err := snowflake.NewNode(int64(cfg.Redemption.SnowflakeNode))
	if err != nil {
		return fmt.Errorf("failed to initialize snowflake node: %w", err)
	}

	// Initialize services
	redemptionService := service.NewRedemptionService(configRepo, limitRepo, usageRepo, couponRepo, node, logger)
	commandService := service.NewCommandService(couponRepo, configRepo, limitRepo, usageRepo, logger)

	// Initialize HTTP handlers
	commandHandler := handler.NewCommandHandler(redemptionService, logger)
	adminHandler := handler.NewAdminHandler(commandService, logger)

	// Initialize router
	mux := router.New(commandHandler, adminHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
