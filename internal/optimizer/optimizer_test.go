package optimizer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
)

func mustDate(t *testing.T, s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestEvaluate_Scenario1_CheaperButRiskierLosesToSafeSupplier(t *testing.T) {
	// Mirrors spec §8 scenario 1: daysRemaining 2.5, supplier A (daily,
	// lead 2, price 1.00) vs supplier B (Mon/Fri, lead 4, price 0.80).
	monday := mustDate(t, "2026-08-03")

	a := domain.Supplier{ID: uuid.New(), Name: "A", Schedule: domain.Daily(), LeadTimeDays: 2}
	b := domain.Supplier{ID: uuid.New(), Name: "B", Schedule: domain.SpecificDaysPattern(time.Monday, time.Friday), LeadTimeDays: 4}

	candidates := []Candidate{
		{Supplier: a, UnitPrice: domain.MoneyFromFloat(1.00)},
		{Supplier: b, UnitPrice: domain.MoneyFromFloat(0.80)},
	}

	result := Evaluate(candidates, 45, 2.5, monday)

	var recommended domain.SupplierOption
	for _, o := range result.Options {
		if o.Recommended {
			recommended = o
		}
	}

	if recommended.SupplierID != a.ID {
		t.Errorf("expected supplier A to be recommended despite higher price, got %s", recommended.SupplierName)
	}

	for _, o := range result.Options {
		if o.SupplierID == b.ID && o.Risk != domain.RiskCritical {
			t.Errorf("expected supplier B risk CRITICAL, got %v", o.Risk)
		}
	}
}

func TestEvaluate_PrefersCheapestAmongSafe(t *testing.T) {
	now := mustDate(t, "2026-08-03")
	a := domain.Supplier{ID: uuid.New(), Name: "A", Schedule: domain.Daily(), LeadTimeDays: 1}
	b := domain.Supplier{ID: uuid.New(), Name: "B", Schedule: domain.Daily(), LeadTimeDays: 1}

	candidates := []Candidate{
		{Supplier: a, UnitPrice: domain.MoneyFromFloat(2.00)},
		{Supplier: b, UnitPrice: domain.MoneyFromFloat(1.00)},
	}

	result := Evaluate(candidates, 10, 30, now)

	var recommended domain.SupplierOption
	for _, o := range result.Options {
		if o.Recommended {
			recommended = o
		}
	}

	if recommended.SupplierID != b.ID {
		t.Errorf("expected cheaper supplier B to win among safe candidates, got %s", recommended.SupplierName)
	}
}

func TestEvaluate_SavingsComputed(t *testing.T) {
	now := mustDate(t, "2026-08-03")
	a := domain.Supplier{ID: uuid.New(), Name: "A", Schedule: domain.Daily(), LeadTimeDays: 1}
	b := domain.Supplier{ID: uuid.New(), Name: "B", Schedule: domain.Daily(), LeadTimeDays: 1}

	candidates := []Candidate{
		{Supplier: a, UnitPrice: domain.MoneyFromFloat(2.00)},
		{Supplier: b, UnitPrice: domain.MoneyFromFloat(1.00)},
	}

	result := Evaluate(candidates, 10, 30, now)

	if result.SavingsVsMax.IsZero() {
		t.Error("expected non-zero savings when prices differ")
	}
	if result.SavingsPercent <= 0 {
		t.Errorf("expected positive savings percent, got %v", result.SavingsPercent)
	}
}

func TestEvaluate_EmptyCandidates(t *testing.T) {
	result := Evaluate(nil, 10, 5, time.Now())
	if result.Options != nil {
		t.Error("expected nil options for empty candidate list")
	}
}

func TestRiskFor_Ladder(t *testing.T) {
	cases := []struct {
		daysUntil     int
		daysRemaining float64
		want          domain.Risk
	}{
		{5, 3, domain.RiskCritical},
		{5, 5, domain.RiskHigh},
		{8, 10, domain.RiskMedium},
		{5, 10, domain.RiskLow},
	}
	for _, c := range cases {
		if got := riskFor(c.daysUntil, c.daysRemaining); got != c.want {
			t.Errorf("riskFor(%d, %v) = %v, want %v", c.daysUntil, c.daysRemaining, got, c.want)
		}
	}
}
