// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/rxreplenish/rde/internal/api"
	"github.com/rxreplenish/rde/internal/assembler"
	"github.com/rxreplenish/rde/internal/breaker"
	"github.com/rxreplenish/rde/internal/catalog"
	"github.com/rxreplenish/rde/internal/config"
	"github.com/rxreplenish/rde/internal/converter"
	"github.com/rxreplenish/rde/internal/engine"
	"github.com/rxreplenish/rde/internal/fefo"
	"github.com/rxreplenish/rde/internal/grn"
	"github.com/rxreplenish/rde/internal/ledger"
	"github.com/rxreplenish/rde/internal/saleshistory"
	"github.com/rxreplenish/rde/internal/storage"
	"github.com/rxreplenish/rde/internal/store"
	"github.com/rxreplenish/rde/internal/suggestion"
	"github.com/rxreplenish/rde/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := store.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	sqlxDB := sqlx.NewDb(db.DB, "postgres")

	// Wire read-side collaborators
	led := ledger.New(db)
	cat := catalog.New(sqlxDB, breaker.DefaultConfig("catalog"))
	sales := saleshistory.New(sqlxDB, breaker.DefaultConfig("saleshistory"))

	asm := assembler.New(led, sales, cat, time.Now)

	// Initialize caches
	listCache, err := suggestion.NewCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Falling back to noop suggestion list cache")
		listCache = suggestion.NewNoopCache()
	}

	// Initialize object storage for draft PO export; absent config
	// disables export rather than failing startup.
	var archive converter.Archive
	if cfg.Storage.Endpoint != "" {
		client, err := storage.New(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage unavailable, draft POs won't be exported")
		} else {
			archive = client
		}
	}

	// Initialize write-side collaborators
	sugStore := suggestion.New(db, listCache)
	conv := converter.New(db, sugStore, cat, archive)
	allocator := fefo.New(db, led)
	ingestor := grn.New(db, led)

	summaryCache, err := suggestion.NewSummaryCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Falling back to noop generation summary cache")
		summaryCache = suggestion.NewNoopSummaryCache()
	}

	eng := engine.New(asm, sugStore, conv, summaryCache)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		Engine:         eng,
		Allocator:      allocator,
		Ingestor:       ingestor,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
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

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
