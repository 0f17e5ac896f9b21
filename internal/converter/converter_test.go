package converter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
)

func TestGroupBySupplier(t *testing.T) {
	supplierA := uuid.New()
	supplierB := uuid.New()

	suggestions := []domain.Suggestion{
		{ID: uuid.New(), SupplierID: &supplierA},
		{ID: uuid.New(), SupplierID: &supplierB},
		{ID: uuid.New(), SupplierID: &supplierA},
		{ID: uuid.New(), SupplierID: nil},
	}

	groups := groupBySupplier(suggestions)

	if len(groups) != 2 {
		t.Fatalf("expected 2 supplier groups, got %d", len(groups))
	}
	if len(groups[supplierA]) != 2 {
		t.Errorf("supplier A group = %d, want 2", len(groups[supplierA]))
	}
	if len(groups[supplierB]) != 1 {
		t.Errorf("supplier B group = %d, want 1", len(groups[supplierB]))
	}
}

func TestRecommendedUnitCost_PicksRecommendedOption(t *testing.T) {
	sug := domain.Suggestion{
		Reason: domain.SuggestionReason{
			SupplierOptions: []domain.SupplierOption{
				{UnitPrice: domain.MoneyFromFloat(9.50), Recommended: false},
				{UnitPrice: domain.MoneyFromFloat(7.25), Recommended: true},
			},
		},
	}

	got := recommendedUnitCost(sug)
	want := domain.MoneyFromFloat(7.25)
	if got.Cmp(want) != 0 {
		t.Errorf("recommendedUnitCost = %v, want %v", got, want)
	}
}

func TestRecommendedUnitCost_NoneRecommendedIsZero(t *testing.T) {
	sug := domain.Suggestion{
		Reason: domain.SuggestionReason{
			SupplierOptions: []domain.SupplierOption{
				{UnitPrice: domain.MoneyFromFloat(9.50), Recommended: false},
			},
		},
	}

	got := recommendedUnitCost(sug)
	if !got.IsZero() {
		t.Errorf("expected zero, got %v", got)
	}
}
