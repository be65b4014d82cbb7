// Package main initializes and starts the practice management API server,
// setting up configuration, logging, database and session connections,
// repositories, services, and handlers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lexora/lexora/internal/blob"
	"github.com/lexora/lexora/internal/config"
	"github.com/lexora/lexora/internal/db"
	"github.com/lexora/lexora/internal/logger"
	"github.com/lexora/lexora/internal/realtime"
	"github.com/lexora/lexora/internal/repository"
	"github.com/lexora/lexora/internal/server/handler/http"
	"github.com/lexora/lexora/internal/service"
	"github.com/lexora/lexora/internal/store"
	"github.com/lexora/lexora/internal/token"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	buildVersion, buildTimestamp := version, buildDate
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildTimestamp == "" {
		buildTimestamp = "N/A"
	}
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildTimestamp)

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Blob storage on the local filesystem.
	blobs, err := blob.NewFS(options.BlobDir)
	if err != nil {
		zapLogger.Fatal("cannot init blob store", zap.Error(err))
	}

	// Reap blobs whose metadata row is gone.
	db.StartOrphanBlobSweeper(ctx, postgresDB, blobs,
		time.Hour,    // interval
		24*time.Hour, // retention
		zapLogger,
	)

	// Sessions live in Redis so sign-out revokes immediately; without a
	// configured Redis they fall back to process memory.
	var sessions token.Store
	if options.RedisAddr != "" {
		sessions = token.NewRedisStore(redis.NewClient(&redis.Options{Addr: options.RedisAddr}))
	} else {
		sessions = token.NewMemoryStore()
	}

	// The change-feed hub receives every committed write.
	hub := realtime.NewHub()

	// Initialize the record store and the account repository.
	records := store.NewPostgres(postgresDB, hub)
	userRepo := repository.NewPostgresUserRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, sessions, options.SessionTTL)
	entityService := service.NewEntityService(records)
	documentService := service.NewDocumentService(records, blobs)
	dashboardService := service.NewDashboardService(records)
	searchService := service.NewSearchService(records)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{Auth: authService}
	entityHandler := &http.EntityHandler{Entities: entityService}
	documentHandler := &http.DocumentHandler{Documents: documentService}
	dashboardHandler := &http.DashboardHandler{Dashboard: dashboardService}
	searchHandler := &http.SearchHandler{Search: searchService}
	subscribeHandler := &http.SubscribeHandler{Hub: hub, Log: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(
		authHandler,
		entityHandler,
		documentHandler,
		dashboardHandler,
		searchHandler,
		subscribeHandler,
		sessions,
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
