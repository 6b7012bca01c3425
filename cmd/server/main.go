// Package main provides the API server entry point for the wallet pulse service.
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

	"github.com/wallet-pulse/internal/api"
	"github.com/wallet-pulse/internal/config"
	"github.com/wallet-pulse/internal/logging"
	"github.com/wallet-pulse/internal/marketdata"
	"github.com/wallet-pulse/internal/service"
	"github.com/wallet-pulse/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Run migrations before opening the pool
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := storage.RunMigrations(cfg.Database.Postgres.PostgresURL(), migrationsPath); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	// Connect to Postgres
	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	// Connect to Redis
	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	// Market data provider client
	client, err := marketdata.NewClient(&cfg.Provider)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create market data client")
	}

	// Repositories and cache
	userRepo := storage.NewUserRepository(postgres)
	followRepo := storage.NewFollowRepository(postgres)
	activityRepo := storage.NewActivityRepository(postgres)
	profileRepo := storage.NewWalletProfileRepository(postgres)
	trendingRepo := storage.NewTrendingRepository(postgres)
	cacheService := storage.NewCacheService(redis, cfg.Cache.TTL)

	// Services
	walletService := service.NewWalletService(client, cacheService)
	statsService := service.NewStatsService(client, cacheService, profileRepo)
	socialService := service.NewSocialService(userRepo, followRepo, activityRepo)
	activityService := service.NewActivityService(followRepo, activityRepo, client)
	signalService := service.NewSignalService(client, userRepo)
	trendingService := service.NewTrendingService(trendingRepo, profileRepo, client, cacheService)

	logger.Info("Services initialized")

	serverConfig := &api.ServerConfig{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}

	server := api.NewServer(
		serverConfig,
		walletService,
		statsService,
		socialService,
		activityService,
		signalService,
		trendingService,
	)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
