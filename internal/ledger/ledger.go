// Package ledger implements the Inventory Ledger (spec §4.1): the
// authoritative store of batches and stock movements per store. It
// enforces non-negative stock and append-only movement history.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
)

// Ledger is the read/write port of the Inventory Ledger. Callers that
// need the composite receive/consume-for-sale operations of spec §6
// use the internal/grn and internal/fefo packages, which drive Ledger
// methods inside their own transactions via TxLedger.
type Ledger interface {
	CurrentStock(ctx context.Context, storeID, productID uuid.UUID) (int, error)
	BatchesByFEFO(ctx context.Context, storeID, productID uuid.UUID) ([]domain.Batch, error)
	ApplyMovement(ctx context.Context, m domain.StockMovement) (domain.Batch, error)
}

// TxLedger is the same operations bound to an open transaction, used
// by fefo and grn so their composite procedures and ledger writes
// share one transaction.
type TxLedger interface {
	CurrentStockTx(ctx context.Context, tx *sql.Tx, storeID, productID uuid.UUID) (int, error)
	BatchesByFEFOTx(ctx context.Context, tx *sql.Tx, storeID, productID uuid.UUID) ([]domain.Batch, error)
	ApplyMovementTx(ctx context.Context, tx *sql.Tx, m domain.StockMovement) (domain.Batch, error)
	UpsertBatchTx(ctx context.Context, tx *sql.Tx, b domain.Batch) (domain.Batch, error)
}

// SortByFEFO orders batches by (expiry asc, received-at asc, id asc),
// with null-expiry batches sorting last, per spec §4.1's determinism
// requirement. Exported so postgres and in-memory implementations (and
// tests) share one tie-break rule instead of each re-deriving it.
func SortByFEFO(batches []domain.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if a.ExpiryDate == nil && b.ExpiryDate != nil {
			return false
		}
		if a.ExpiryDate != nil && b.ExpiryDate == nil {
			return true
		}
		if a.ExpiryDate != nil && b.ExpiryDate != nil && !a.ExpiryDate.Equal(*b.ExpiryDate) {
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
		if !a.ReceivedAt.Equal(b.ReceivedAt) {
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// ValidateMovement checks the invariants ApplyMovement must enforce
// before touching storage: the batch belongs to the movement's store,
// and the resulting qty-on-hand would not go negative.
func ValidateMovement(batch domain.Batch, m domain.StockMovement) error {
	if batch.StoreID != m.StoreID {
		return domain.ErrStoreMismatch
	}
	if batch.QtyOnHand+m.Qty < 0 {
		return fmt.Errorf("%w: batch %s has %d, movement would apply %d", domain.ErrInsufficientStock, batch.ID, batch.QtyOnHand, m.Qty)
	}
	return nil
}
