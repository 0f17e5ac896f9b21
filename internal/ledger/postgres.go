package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/store"
)

// Postgres implements Ledger and TxLedger against the store.DB pool,
// grounded on the teacher's sqlx-based repository read patterns
// (internal/repository/postgres/po_repository.go) generalized to the
// batch/movement schema of this specification.
type Postgres struct {
	db *store.DB
}

// New wraps db as a Ledger.
func New(db *store.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) CurrentStock(ctx context.Context, storeID, productID uuid.UUID) (int, error) {
	return p.CurrentStockTx(ctx, nil, storeID, productID)
}

func (p *Postgres) BatchesByFEFO(ctx context.Context, storeID, productID uuid.UUID) ([]domain.Batch, error) {
	return p.BatchesByFEFOTx(ctx, nil, storeID, productID)
}

func (p *Postgres) ApplyMovement(ctx context.Context, m domain.StockMovement) (domain.Batch, error) {
	var result domain.Batch
	err := p.db.WithSerializableTx(ctx, func(tx *sql.Tx) error {
		batch, applyErr := p.ApplyMovementTx(ctx, tx, m)
		if applyErr != nil {
			return applyErr
		}
		result = batch
		return nil
	})
	return result, err
}

// querier abstracts *sql.DB vs *sql.Tx so the Tx-suffixed methods work
// both standalone (nil tx, via the pool) and nested in a caller's
// transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (p *Postgres) q(tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return p.db.DB
}

func (p *Postgres) CurrentStockTx(ctx context.Context, tx *sql.Tx, storeID, productID uuid.UUID) (int, error) {
	const query = `
		SELECT COALESCE(SUM(qty_on_hand), 0)
		FROM batches
		WHERE store_id = $1 AND product_id = $2 AND qty_on_hand > 0
	`
	var total int
	err := p.q(tx).QueryRowContext(ctx, query, storeID, productID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing current stock: %w", err)
	}
	return total, nil
}

func (p *Postgres) BatchesByFEFOTx(ctx context.Context, tx *sql.Tx, storeID, productID uuid.UUID) ([]domain.Batch, error) {
	const query = `
		SELECT id, product_id, store_id, supplier_id, batch_number, expiry_date, unit_cost, qty_on_hand, received_at
		FROM batches
		WHERE store_id = $1 AND product_id = $2 AND qty_on_hand > 0
	`
	rows, err := p.q(tx).QueryContext(ctx, query, storeID, productID)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	defer rows.Close()

	var batches []domain.Batch
	for rows.Next() {
		var b domain.Batch
		var unitCost string
		if err := rows.Scan(&b.ID, &b.ProductID, &b.StoreID, &b.SupplierID, &b.BatchNumber, &b.ExpiryDate, &unitCost, &b.QtyOnHand, &b.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scanning batch row: %w", err)
		}
		money, err := parseMoney(unitCost)
		if err != nil {
			return nil, err
		}
		b.UnitCost = money
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	SortByFEFO(batches)
	return batches, nil
}

func (p *Postgres) ApplyMovementTx(ctx context.Context, tx *sql.Tx, m domain.StockMovement) (domain.Batch, error) {
	q := p.q(tx)

	const selectQuery = `
		SELECT id, product_id, store_id, supplier_id, batch_number, expiry_date, unit_cost, qty_on_hand, received_at
		FROM batches WHERE id = $1 FOR UPDATE
	`
	var b domain.Batch
	var unitCost string
	err := q.QueryRowContext(ctx, selectQuery, m.BatchID).
		Scan(&b.ID, &b.ProductID, &b.StoreID, &b.SupplierID, &b.BatchNumber, &b.ExpiryDate, &unitCost, &b.QtyOnHand, &b.ReceivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Batch{}, domain.ErrBatchNotFound
	}
	if err != nil {
		return domain.Batch{}, fmt.Errorf("locking batch: %w", err)
	}
	money, err := parseMoney(unitCost)
	if err != nil {
		return domain.Batch{}, err
	}
	b.UnitCost = money

	if err := ValidateMovement(b, m); err != nil {
		return domain.Batch{}, err
	}

	newQty := b.QtyOnHand + m.Qty
	const updateQuery = `UPDATE batches SET qty_on_hand = $1 WHERE id = $2`
	if _, err := q.ExecContext(ctx, updateQuery, newQty, b.ID); err != nil {
		return domain.Batch{}, fmt.Errorf("updating batch quantity: %w", err)
	}
	b.QtyOnHand = newQty

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	const insertMovement = `
		INSERT INTO stock_movements (id, product_id, batch_id, store_id, type, qty, unit_cost, "user", ref_table, ref_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	var unitCostArg interface{}
	if m.UnitCost != nil {
		unitCostArg = m.UnitCost.String()
	}
	if _, err := q.ExecContext(ctx, insertMovement,
		m.ID, m.ProductID, m.BatchID, m.StoreID, int(m.Type), m.Qty, unitCostArg, m.User, m.RefTable, m.RefID, m.CreatedAt,
	); err != nil {
		return domain.Batch{}, fmt.Errorf("appending stock movement: %w", err)
	}

	return b, nil
}

// UpsertBatchTx finds or creates the batch for (product_id,
// batch_number), inserting at qty 0 when it doesn't yet exist. It never
// applies b.QtyOnHand itself: the caller is expected to follow up with
// ApplyMovementTx so the quantity is added exactly once and recorded as
// a movement (spec §8's qty-on-hand == Σ movement.qty invariant).
func (p *Postgres) UpsertBatchTx(ctx context.Context, tx *sql.Tx, b domain.Batch) (domain.Batch, error) {
	q := p.q(tx)

	const upsert = `
		INSERT INTO batches (id, product_id, store_id, supplier_id, batch_number, expiry_date, unit_cost, qty_on_hand, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
		ON CONFLICT (product_id, batch_number) DO UPDATE SET
			qty_on_hand = batches.qty_on_hand
		RETURNING id, qty_on_hand
	`
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.ReceivedAt.IsZero() {
		b.ReceivedAt = time.Now().UTC()
	}

	var id uuid.UUID
	var qty int
	err := q.QueryRowContext(ctx, upsert,
		b.ID, b.ProductID, b.StoreID, b.SupplierID, b.BatchNumber, b.ExpiryDate, b.UnitCost.String(), b.ReceivedAt,
	).Scan(&id, &qty)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("upserting batch: %w", err)
	}

	b.ID = id
	b.QtyOnHand = qty
	return b, nil
}

func parseMoney(s string) (domain.Money, error) {
	var m domain.Money
	if err := m.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
		return domain.Money{}, fmt.Errorf("parsing money column %q: %w", s, err)
	}
	return m, nil
}
