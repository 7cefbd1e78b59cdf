// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wearella/marketpulse/internal/api"
	"github.com/wearella/marketpulse/internal/cache"
	"github.com/wearella/marketpulse/internal/config"
	"github.com/wearella/marketpulse/internal/pipeline"
	"github.com/wearella/marketpulse/internal/projection"
	"github.com/wearella/marketpulse/internal/repository/mongodb"
	"github.com/wearella/marketpulse/internal/service"
	"github.com/wearella/marketpulse/internal/skumap"
	"github.com/wearella/marketpulse/internal/storage"
	"github.com/wearella/marketpulse/pkg/logger"
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
	db, err := mongodb.NewDB(&cfg.Mongo)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to close database connection")
		}
	}()

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	db.EnsureIndexes(indexCtx)
	cancelIndex()

	// SKU mapping table; a missing file degrades to passthrough mapping
	mappingTable := skumap.LoadFile(cfg.App.MappingFile)

	// Report cache; disabled or unreachable redis degrades to a noop
	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, continuing without caching")
		reportCache = cache.NewNoopReportCache()
	}

	// Raw upload archive
	var archive storage.UploadArchive = storage.NewNoopArchive()
	if cfg.Archive.Enabled {
		fileArchive, err := storage.NewFileArchive(cfg.Archive)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Upload archive unavailable, continuing without archiving")
		} else {
			archive = fileArchive
		}
	}

	// Initialize services
	repo := mongodb.NewUploadRecordRepository(db)
	aggregator := pipeline.NewAggregator(mappingTable)
	engine := projection.NewEngine(projection.DefaultConfig())

	services := &api.Services{
		UploadService:     service.NewUploadService(repo, aggregator, reportCache, archive),
		ReportService:     service.NewReportService(repo, reportCache, cfg.App.RecentWindow),
		ProjectionService: service.NewProjectionService(repo, engine, reportCache, cfg.App.RecentWindow),
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
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
