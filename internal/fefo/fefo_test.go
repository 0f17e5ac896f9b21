package fefo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
)

func TestComputeTotals(t *testing.T) {
	lines := []domain.SaleLine{
		{ProductID: uuid.New(), Qty: 2, UnitPrice: domain.MoneyFromFloat(10), TaxRate: 0.1, Discount: 0.05},
		{ProductID: uuid.New(), Qty: 1, UnitPrice: domain.MoneyFromFloat(5), TaxRate: 0.1, Discount: 0},
	}
	paid := domain.MoneyFromFloat(30)

	totals := computeTotals(lines, paid)

	wantSubtotal := domain.MoneyFromFloat(25) // 2*10 + 1*5
	if totals.Subtotal.Cmp(wantSubtotal) != 0 {
		t.Errorf("subtotal = %v, want %v", totals.Subtotal, wantSubtotal)
	}

	if totals.Total.IsZero() {
		t.Error("expected a non-zero total")
	}

	wantChange := paid.Sub(totals.Total)
	if totals.Change.Cmp(wantChange) != 0 {
		t.Errorf("change = %v, want %v", totals.Change, wantChange)
	}
}

func TestComputeTotals_NoLines(t *testing.T) {
	totals := computeTotals(nil, domain.Zero())
	if !totals.Total.IsZero() {
		t.Errorf("expected zero total for no lines, got %v", totals.Total)
	}
}
