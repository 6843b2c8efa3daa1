package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/invwatch/internal/api"
	"github.com/andresuchdata/invwatch/internal/cache"
	"github.com/andresuchdata/invwatch/internal/config"
	"github.com/andresuchdata/invwatch/internal/loader"
	"github.com/andresuchdata/invwatch/internal/repository/sqlite"
	"github.com/andresuchdata/invwatch/internal/service"
	"github.com/andresuchdata/invwatch/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tables, err := loader.Load(loader.Paths{
		SKUMaster: cfg.Data.SKUMasterPath,
		Demand:    cfg.Data.DemandPath,
		Inventory: cfg.Data.InventoryPath,
		Txn:       cfg.Data.TxnPath,
	})
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to load input files")
	}

	db, err := sqlite.NewDB()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to open store")
	}
	defer db.Close()

	if err := db.Ingest(context.Background(), tables); err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to ingest input tables")
	}

	metricsCache, err := cache.NewMetricsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		metricsCache = cache.NewNoopMetricsCache()
	}
	// the cache outlives the process; anything in it describes a
	// previous run's input files
	if err := metricsCache.InvalidateAll(context.Background()); err != nil {
		logger.Log.Warn().Err(err).Msg("failed to drop cached results")
	}

	repo := sqlite.NewInventoryRepository(db)
	services := &api.Services{
		MetricsService:  service.NewMetricsService(repo, metricsCache),
		ForecastService: service.NewForecastService(repo),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}
