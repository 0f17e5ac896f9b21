// Package store provides the shared Postgres connection pool and
// transaction helper used by every write-path package (ledger, fefo,
// grn, suggestion, converter). Adapted from the teacher's
// internal/repository/postgres/db.go: the same semaphore-bounded
// connection pool and WithTx wrapper, generalized with an explicit
// isolation level and retry-on-serialization-failure per this
// specification's concurrency contract.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/rxreplenish/rde/internal/config"
	"github.com/rxreplenish/rde/internal/domain"
)

// DB wraps *sql.DB with a semaphore bounding concurrent transactions,
// mirroring the teacher's db.go.
type DB struct {
	*sql.DB
	sem *semaphore.Weighted
}

// Open connects to Postgres per cfg and verifies the connection.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return &DB{DB: sqlDB, sem: semaphore.NewWeighted(10)}, nil
}

// WithTx runs fn inside a transaction at the given isolation level,
// committing on success and rolling back on any error. It acquires the
// pool semaphore for the duration of the transaction, as the teacher's
// db.go does for every write path.
func (db *DB) WithTx(ctx context.Context, isolation sql.IsolationLevel, fn func(tx *sql.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquiring db semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("rolling back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// WithSerializableTx runs fn at serializable isolation and retries on
// serialization failure (Postgres SQLSTATE 40001), per spec §5's "up
// to 3 retries with jittered backoff" contract for concurrent sales
// and approvals.
func (db *DB) WithSerializableTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return domain.WithRetry(ctx, domain.DefaultRetryConfig(), func() error {
		err := db.WithTx(ctx, sql.LevelSerializable, fn)
		if isSerializationFailure(err) {
			return domain.ErrConcurrentModification
		}
		return err
	})
}

func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrConcurrentModification) {
		return true
	}
	// Postgres reports serialization failures as SQLSTATE 40001.
	msg := err.Error()
	return strings.Contains(msg, "40001") || strings.Contains(msg, "could not serialize")
}
