// Package suggestion implements the Suggestion Store (spec §4.8):
// persistence, filtered listing, and status-machine-enforced updates
// for reorder suggestions. Grounded on the teacher's
// internal/repository/postgres/po_repository.go query-building idiom
// and internal/cache/dashboard.go's redis-backed (with noop fallback)
// caching shape, here applied to suggestion listings instead of
// dashboard summaries.
package suggestion

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/store"
)

// Store persists and retrieves Suggestions.
type Store struct {
	db    *store.DB
	cache ListCache
}

// New builds a Store. cache may be a noop implementation.
func New(db *store.DB, cache ListCache) *Store {
	return &Store{db: db, cache: cache}
}

// Save inserts the generated suggestions for one generation run,
// replacing any still-PENDING suggestions for the same products so a
// re-run doesn't accumulate stale duplicates (spec §4.7).
func (s *Store) Save(ctx context.Context, suggestions []domain.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	err := s.db.WithTx(ctx, sql.LevelReadCommitted, func(tx *sql.Tx) error {
		for _, sug := range suggestions {
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM suggestions WHERE store_id = $1 AND product_id = $2 AND status = $3
			`, sug.StoreID, sug.ProductID, int(domain.SuggestionPending)); err != nil {
				return fmt.Errorf("clearing stale pending suggestion: %w", err)
			}

			reasonJSON, err := json.Marshal(sug.Reason)
			if err != nil {
				return fmt.Errorf("encoding suggestion reason: %w", err)
			}
			scenariosJSON, err := json.Marshal(sug.Scenarios)
			if err != nil {
				return fmt.Errorf("encoding suggestion scenarios: %w", err)
			}

			const insert = `
				INSERT INTO suggestions (
					id, product_id, store_id, supplier_id, rop, order_qty, status,
					analysis_period_days, stock_duration_days, urgency, next_delivery_date,
					scenarios, reason, note, created_at
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
			`
			_, err = tx.ExecContext(ctx, insert,
				sug.ID, sug.ProductID, sug.StoreID, sug.SupplierID, sug.ROP, sug.OrderQty, int(sug.Status),
				sug.AnalysisPeriodDays, sug.StockDurationDays, int(sug.Urgency), sug.NextDeliveryDate,
				scenariosJSON, reasonJSON, sug.Note, sug.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("inserting suggestion: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(suggestions) > 0 {
		_ = s.cache.InvalidateStore(ctx, suggestions[0].StoreID)
	}
	return nil
}

// List returns suggestions matching filter, trying the cache first
// (spec §4.8).
func (s *Store) List(ctx context.Context, filter domain.SuggestionFilter) ([]domain.Suggestion, error) {
	if cached, ok, err := s.cache.Get(ctx, filter); err == nil && ok {
		return cached, nil
	}

	query, args := buildListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing suggestions: %w", err)
	}
	defer rows.Close()

	var results []domain.Suggestion
	for rows.Next() {
		sug, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, sug)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, filter, results)
	return results, nil
}

func buildListQuery(filter domain.SuggestionFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`
		SELECT id, product_id, store_id, supplier_id, rop, order_qty, status,
		       analysis_period_days, stock_duration_days, urgency, next_delivery_date,
		       scenarios, reason, note, created_at
		FROM suggestions WHERE store_id = $1
	`)
	args := []any{filter.StoreID}

	if filter.Status != nil {
		args = append(args, int(*filter.Status))
		b.WriteString(fmt.Sprintf(" AND status = $%d", len(args)))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		b.WriteString(fmt.Sprintf(" AND product_id = $%d", len(args)))
	}

	b.WriteString(" ORDER BY created_at DESC")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	args = append(args, pageSize, (page-1)*pageSize)
	b.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	return b.String(), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSuggestion(row scanner) (domain.Suggestion, error) {
	var sug domain.Suggestion
	var scenariosJSON, reasonJSON []byte
	var supplierID uuid.NullUUID
	var nextDelivery sql.NullTime

	err := row.Scan(
		&sug.ID, &sug.ProductID, &sug.StoreID, &supplierID, &sug.ROP, &sug.OrderQty, &sug.Status,
		&sug.AnalysisPeriodDays, &sug.StockDurationDays, &sug.Urgency, &nextDelivery,
		&scenariosJSON, &reasonJSON, &sug.Note, &sug.CreatedAt,
	)
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("scanning suggestion: %w", err)
	}

	if supplierID.Valid {
		id := supplierID.UUID
		sug.SupplierID = &id
	}
	if nextDelivery.Valid {
		t := nextDelivery.Time
		sug.NextDeliveryDate = &t
	}
	if len(scenariosJSON) > 0 {
		if err := json.Unmarshal(scenariosJSON, &sug.Scenarios); err != nil {
			return domain.Suggestion{}, fmt.Errorf("decoding scenarios: %w", err)
		}
	}
	if len(reasonJSON) > 0 {
		if err := json.Unmarshal(reasonJSON, &sug.Reason); err != nil {
			return domain.Suggestion{}, fmt.Errorf("decoding reason: %w", err)
		}
	}

	return sug, nil
}

// Update applies a PENDING-only edit to order quantity, ROP, and/or
// note (spec §4.8). Attempting to edit a non-PENDING suggestion fails
// with ErrIllegalTransition.
func (s *Store) Update(ctx context.Context, id uuid.UUID, upd domain.SuggestionUpdate) error {
	return s.db.WithTx(ctx, sql.LevelReadCommitted, func(tx *sql.Tx) error {
		var status int
		var storeID uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT status, store_id FROM suggestions WHERE id = $1 FOR UPDATE`, id).Scan(&status, &storeID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading suggestion: %w", err)
		}
		if domain.SuggestionStatus(status) != domain.SuggestionPending {
			return domain.ErrIllegalTransition
		}

		var sets []string
		var args []any
		if upd.OrderQty != nil {
			args = append(args, *upd.OrderQty)
			sets = append(sets, fmt.Sprintf("order_qty = $%d", len(args)))
		}
		if upd.ROP != nil {
			args = append(args, *upd.ROP)
			sets = append(sets, fmt.Sprintf("rop = $%d", len(args)))
		}
		if upd.Note != nil {
			args = append(args, *upd.Note)
			sets = append(sets, fmt.Sprintf("note = $%d", len(args)))
		}
		if len(sets) == 0 {
			return nil
		}

		args = append(args, id)
		query := fmt.Sprintf("UPDATE suggestions SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("updating suggestion: %w", err)
		}

		_ = s.cache.InvalidateStore(ctx, storeID)
		return nil
	})
}

// transition applies a PENDING -> to status change enforced by
// domain.CanTransition, used by Reject.
func (s *Store) transition(ctx context.Context, tx *sql.Tx, id uuid.UUID, to domain.SuggestionStatus) error {
	var from int
	var storeID uuid.UUID
	err := tx.QueryRowContext(ctx, `SELECT status, store_id FROM suggestions WHERE id = $1 FOR UPDATE`, id).Scan(&from, &storeID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading suggestion: %w", err)
	}
	if !domain.CanTransition(domain.SuggestionStatus(from), to) {
		return domain.ErrIllegalTransition
	}

	if _, err := tx.ExecContext(ctx, `UPDATE suggestions SET status = $1 WHERE id = $2`, int(to), id); err != nil {
		return fmt.Errorf("updating suggestion status: %w", err)
	}
	_ = s.cache.InvalidateStore(ctx, storeID)
	return nil
}

// Reject transitions each id from PENDING to REJECTED (spec §4.8).
// Ids that are not currently PENDING, or not found, are skipped (left out
// of the returned list) and do not abort the batch.
func (s *Store) Reject(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	var rejected []uuid.UUID
	err := s.db.WithTx(ctx, sql.LevelReadCommitted, func(tx *sql.Tx) error {
		for _, id := range ids {
			if err := s.transition(ctx, tx, id, domain.SuggestionRejected); err != nil {
				if errors.Is(err, domain.ErrIllegalTransition) || errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return err
			}
			rejected = append(rejected, id)
		}
		return nil
	})
	return rejected, err
}

// Clear deletes all suggestions for a store (spec §4.8), e.g. before a
// fresh generation run supersedes the board.
func (s *Store) Clear(ctx context.Context, storeID uuid.UUID) error {
	err := s.db.WithTx(ctx, sql.LevelReadCommitted, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM suggestions WHERE store_id = $1`, storeID)
		return err
	})
	if err != nil {
		return fmt.Errorf("clearing suggestions: %w", err)
	}
	_ = s.cache.InvalidateStore(ctx, storeID)
	return nil
}

// Get loads one suggestion by id, locking it FOR UPDATE within tx when
// tx is non-nil. Used by the Approval Converter to re-check PENDING
// status at commit time.
func (s *Store) Get(ctx context.Context, tx *sql.Tx, id uuid.UUID) (domain.Suggestion, error) {
	q := `
		SELECT id, product_id, store_id, supplier_id, rop, order_qty, status,
		       analysis_period_days, stock_duration_days, urgency, next_delivery_date,
		       scenarios, reason, note, created_at
		FROM suggestions WHERE id = $1
	`
	var row scanner
	if tx != nil {
		row = tx.QueryRowContext(ctx, q+" FOR UPDATE", id)
	} else {
		row = s.db.QueryRowContext(ctx, q, id)
	}
	sug, err := scanSuggestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Suggestion{}, domain.ErrNotFound
	}
	return sug, err
}
