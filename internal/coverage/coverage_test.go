package coverage

import (
	"testing"
	"time"

	"github.com/rxreplenish/rde/internal/domain"
)

func TestCurrentCoverage_Basic(t *testing.T) {
	now := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	r := CurrentCoverage(25, 10, now)

	if r.DaysRemaining != 2.5 {
		t.Errorf("expected daysRemaining 2.5, got %v", r.DaysRemaining)
	}
	if r.Status != StatusUrgent {
		t.Errorf("expected URGENT status, got %v", r.Status)
	}
	if r.StockoutDate == nil {
		t.Fatal("expected a stockout date")
	}
}

func TestCurrentCoverage_ZeroDemand(t *testing.T) {
	now := time.Now().UTC()
	r := CurrentCoverage(100, 0, now)

	if r.DaysRemaining != MaxCoverageDays {
		t.Errorf("expected daysRemaining clamped to %d, got %v", MaxCoverageDays, r.DaysRemaining)
	}
	if r.StockoutDate != nil {
		t.Error("expected no stockout date when coverage is unbounded")
	}
}

func TestCurrentCoverage_Clamp(t *testing.T) {
	now := time.Now().UTC()
	r := CurrentCoverage(100000, 1, now)

	if r.DaysRemaining != MaxCoverageDays {
		t.Errorf("expected clamp to %d, got %v", MaxCoverageDays, r.DaysRemaining)
	}
	if r.StockoutDate != nil {
		t.Error("expected no stockout date once clamped to max coverage")
	}
}

func TestOrderQuantity_Basic(t *testing.T) {
	qty := OrderQuantity(25, 10, 7, 5, 1)
	// target = ceil(10*7+5) = 75; qty = 75-25 = 50
	if qty != 50 {
		t.Errorf("expected 50, got %d", qty)
	}
}

func TestOrderQuantity_RoundsToMOQ(t *testing.T) {
	qty := OrderQuantity(0, 10, 7, 0, 20)
	// target = 70; qty = 70, rounds up to nearest multiple of 20 -> 80
	if qty != 80 {
		t.Errorf("expected 80, got %d", qty)
	}
}

func TestOrderQuantity_NeverNegative(t *testing.T) {
	qty := OrderQuantity(1000, 1, 1, 0, 1)
	if qty != 0 {
		t.Errorf("expected 0 when stock already exceeds target, got %d", qty)
	}
}

func TestOrderQuantity_DefaultMOQ(t *testing.T) {
	qty := OrderQuantity(0, 5, 1, 0, 0)
	if qty != 5 {
		t.Errorf("expected moq<=0 to behave as 1, got %d", qty)
	}
}

func TestScenarios_DefaultPeriods(t *testing.T) {
	price := domain.MoneyFromFloat(2.50)
	scenarios := Scenarios(25, 10, 5, price, 1, nil)

	if len(scenarios) != 3 {
		t.Fatalf("expected 3 default scenarios, got %d", len(scenarios))
	}
	for i, days := range DefaultPeriods {
		if scenarios[i].CoverageDays != days {
			t.Errorf("scenario %d: expected coverageDays %d, got %d", i, days, scenarios[i].CoverageDays)
		}
	}
}

func TestScenarios_CostPerDay(t *testing.T) {
	price := domain.MoneyFromFloat(1.00)
	scenarios := Scenarios(0, 10, 0, price, 1, []int{10})

	want := domain.MoneyFromFloat(100.00).DivInt(10)
	if scenarios[0].CostPerDay.Cmp(want) != 0 {
		t.Errorf("expected costPerDay %v, got %v", want, scenarios[0].CostPerDay)
	}
}

func TestStatusFor_Thresholds(t *testing.T) {
	cases := []struct {
		days float64
		want Status
	}{
		{0.5, StatusCritical},
		{2, StatusUrgent},
		{5, StatusLow},
		{30, StatusGood},
		{31, StatusOverstocked},
	}
	for _, c := range cases {
		if got := statusFor(c.days); got != c.want {
			t.Errorf("statusFor(%v) = %v, want %v", c.days, got, c.want)
		}
	}
}
