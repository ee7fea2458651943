// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/mpstock/internal/api"
	"github.com/andresuchdata/mpstock/internal/cache"
	"github.com/andresuchdata/mpstock/internal/config"
	"github.com/andresuchdata/mpstock/internal/drive"
	"github.com/andresuchdata/mpstock/internal/metrics"
	"github.com/andresuchdata/mpstock/internal/monitoring"
	"github.com/andresuchdata/mpstock/internal/repository"
	"github.com/andresuchdata/mpstock/internal/repository/postgres"
	"github.com/andresuchdata/mpstock/internal/service"
	"github.com/andresuchdata/mpstock/internal/snapshot"
	"github.com/andresuchdata/mpstock/internal/storage"
	"github.com/andresuchdata/mpstock/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Configure(cfg.Log.Format, cfg.Log.Level)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader, closeLoader, err := newLoader(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("source", cfg.Snapshot.Source).Msg("Failed to initialize snapshot source")
	}
	defer closeLoader()

	viewCache, err := cache.NewViewCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("View cache unavailable, continuing without it")
		viewCache = cache.NewNoopViewCache()
	}

	matcher, err := monitoring.NewMatcher(cfg.Monitor.Matcher)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid monitor configuration")
	}

	collector := metrics.NewCollector("mpstock", nil)
	engine := monitoring.NewEngine(monitoring.Config{
		Matcher:    matcher,
		WatchList:  cfg.Monitor.WatchList,
		AlertLimit: cfg.Monitor.AlertLimit,
	})
	monitoringService := service.NewMonitoringService(loader, engine, viewCache, collector)

	go monitoringService.Run(ctx, cfg.Snapshot.RefreshInterval())

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		MonitoringService: monitoringService,
		Metrics:           collector,
	}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("source", loader.Name()).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// newLoader builds the configured snapshot source. The returned func releases
// any connection the source holds.
func newLoader(ctx context.Context, cfg *config.Config) (snapshot.Loader, func(), error) {
	noop := func() {}

	switch cfg.Snapshot.Source {
	case config.SourceFile, "":
		return snapshot.NewFileLoader(cfg.Snapshot.Path), noop, nil

	case config.SourceS3:
		client, err := storage.New(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
			Client:    cfg.Storage.Client,
		})
		if err != nil {
			return nil, nil, err
		}
		return storage.NewSnapshotLoader(client, cfg.Snapshot.ObjectKey), noop, nil

	case config.SourcePostgres:
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo := repository.NewSnapshotRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.NewSnapshotLoader(repo, cfg.Snapshot.Name), func() { db.Close() }, nil

	case config.SourceDrive:
		driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, nil, err
		}
		loader, err := drive.NewLoaderForPath(ctx, driveService, cfg.Drive.FolderID, cfg.Drive.FileName)
		if err != nil {
			return nil, nil, err
		}
		return loader, noop, nil
	}

	return nil, nil, fmt.Errorf("unknown snapshot source %q", cfg.Snapshot.Source)
}
