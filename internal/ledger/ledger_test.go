package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
)

func TestSortByFEFO_ExpiryThenReceivedThenID(t *testing.T) {
	now := time.Now()
	later := now.Add(24 * time.Hour)

	a := domain.Batch{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), ExpiryDate: &now, ReceivedAt: now}
	b := domain.Batch{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), ExpiryDate: &later, ReceivedAt: now}
	c := domain.Batch{ID: uuid.MustParse("00000000-0000-0000-0000-000000000003"), ExpiryDate: nil, ReceivedAt: now}

	batches := []domain.Batch{c, b, a}
	SortByFEFO(batches)

	if batches[0].ID != a.ID || batches[1].ID != b.ID || batches[2].ID != c.ID {
		t.Errorf("expected order a,b,c (earliest expiry first, null-expiry last), got %v, %v, %v",
			batches[0].ID, batches[1].ID, batches[2].ID)
	}
}

func TestSortByFEFO_TieBreakByReceivedThenID(t *testing.T) {
	expiry := time.Now()
	earlier := expiry.Add(-time.Hour)
	later := expiry

	idLow := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	idHigh := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	a := domain.Batch{ID: idHigh, ExpiryDate: &expiry, ReceivedAt: earlier}
	b := domain.Batch{ID: idLow, ExpiryDate: &expiry, ReceivedAt: later}

	batches := []domain.Batch{b, a}
	SortByFEFO(batches)

	if batches[0].ID != a.ID {
		t.Errorf("expected earliest received-at first regardless of id, got %v", batches[0].ID)
	}
}

func TestValidateMovement_StoreMismatch(t *testing.T) {
	storeA := uuid.New()
	storeB := uuid.New()
	batch := domain.Batch{StoreID: storeA, QtyOnHand: 10}
	movement := domain.StockMovement{StoreID: storeB, Qty: -1}

	if err := ValidateMovement(batch, movement); err != domain.ErrStoreMismatch {
		t.Errorf("expected ErrStoreMismatch, got %v", err)
	}
}

func TestValidateMovement_InsufficientStock(t *testing.T) {
	store := uuid.New()
	batch := domain.Batch{StoreID: store, QtyOnHand: 5}
	movement := domain.StockMovement{StoreID: store, Qty: -10}

	err := ValidateMovement(batch, movement)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestValidateMovement_OK(t *testing.T) {
	store := uuid.New()
	batch := domain.Batch{StoreID: store, QtyOnHand: 5}
	movement := domain.StockMovement{StoreID: store, Qty: -5}

	if err := ValidateMovement(batch, movement); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
