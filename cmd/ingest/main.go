// backend-go/cmd/ingest/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/rxreplenish/rde/internal/breaker"
	"github.com/rxreplenish/rde/internal/catalog"
	"github.com/rxreplenish/rde/internal/config"
	"github.com/rxreplenish/rde/internal/grn"
	"github.com/rxreplenish/rde/internal/ingest"
	"github.com/rxreplenish/rde/internal/ledger"
	"github.com/rxreplenish/rde/internal/storage"
	"github.com/rxreplenish/rde/internal/store"
	"github.com/rxreplenish/rde/pkg/logger"
)

func main() {
	cfg := config.Load()

	db, err := store.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	sqlxDB := sqlx.NewDb(db.DB, "postgres")
	cat := catalog.New(sqlxDB, breaker.DefaultConfig("catalog"))
	led := ledger.New(db)
	ingestor := grn.New(db, led)

	driveService, err := ingest.NewService(cfg.Ingest.DriveCredentialsJSON)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize Drive service")
	}

	var archive ingest.Archive
	if cfg.Storage.Endpoint != "" {
		client, err := storage.New(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage unavailable, raw feeds won't be archived")
		} else {
			archive = client
		}
	}

	pipeline := ingest.New(driveService, cat, ingestor, archive)

	if cfg.Ingest.DriveFolderID != "" && cfg.Ingest.DefaultStoreID != "" {
		if storeID, err := uuid.Parse(cfg.Ingest.DefaultStoreID); err != nil {
			logger.Log.Warn().Err(err).Msg("Invalid INGEST_DEFAULT_STORE_ID, folder watch disabled")
		} else {
			watcher := ingest.NewWatcher(driveService, pipeline, logger.Log)
			go watcher.Run(context.Background(), ingest.WatchOptions{
				FolderID: cfg.Ingest.DriveFolderID,
				StoreID:  storeID,
				Interval: time.Duration(cfg.Ingest.WatchIntervalSeconds) * time.Second,
			})
		}
	}

	router := mux.NewRouter()
	ingest.NewHandler(driveService, pipeline).RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%s", cfg.Ingest.Port)
	logger.Log.Info().Str("addr", addr).Msg("Starting ingest trigger API")
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Log.Fatal().Err(err).Msg("Ingest server exited")
	}
}
