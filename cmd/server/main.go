// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/esc4n0rx/abastececd/internal/api"
	"github.com/esc4n0rx/abastececd/internal/cache"
	"github.com/esc4n0rx/abastececd/internal/calc"
	"github.com/esc4n0rx/abastececd/internal/config"
	"github.com/esc4n0rx/abastececd/internal/ingest"
	"github.com/esc4n0rx/abastececd/internal/repository"
	"github.com/esc4n0rx/abastececd/internal/repository/postgres"
	"github.com/esc4n0rx/abastececd/internal/service"
	"github.com/esc4n0rx/abastececd/internal/storage"
	"github.com/esc4n0rx/abastececd/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	stockRepo := repository.NewStockRepository(db)
	demandRepo := repository.NewDemandRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	uploadRepo := repository.NewUploadHistoryRepository(db)

	// Initialize cache
	positionCache, err := cache.NewPositionCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("positions cache unavailable, continuing without it")
		positionCache = cache.NewNoopPositionCache()
	}

	// Initialize upload archive
	var archive storage.ObjectStorage = storage.NoopStorage{}
	if cfg.Archive.Enabled {
		archive, err = storage.NewMinioClient(cfg.Archive)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("upload archive unavailable, continuing without it")
			archive = storage.NoopStorage{}
		}
	}

	// Initialize services
	ingestService := ingest.NewService(stockRepo, demandRepo, uploadRepo, cfg.App.BatchSize)
	calcService := calc.NewService(settingsRepo, stockRepo, demandRepo, positionRepo, cfg.App.BatchSize)
	replenishmentService := service.NewReplenishmentService(
		ingestService, calcService,
		stockRepo, demandRepo, positionRepo, settingsRepo, uploadRepo,
		positionCache, archive,
	)

	// Initialize HTTP server
	router := api.NewRouter(replenishmentService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
