// Package optimizer chooses among the suppliers able to supply a SKU,
// weighing cost against delivery timing and stockout risk (spec §4.6).
// It is a pure function over a candidate list, grounded on the same
// calculator shape as schedule and coverage.
package optimizer

import (
	"time"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/schedule"
)

// Candidate is one supplier able to fill an order, before computed
// fields are attached (spec §4.6 input shape).
type Candidate struct {
	Supplier  domain.Supplier
	UnitPrice domain.Money
}

// Result is the output of Evaluate: one option per candidate, in the
// order the candidates were given (not sorted), plus the
// recommended entry's savings relative to the worst-cost candidate
// (spec §4.6).
type Result struct {
	Options        []domain.SupplierOption
	SavingsVsMax   domain.Money
	SavingsPercent float64
}

// Evaluate scores every candidate against the requested order quantity
// and the SKU's current coverage, returning every option in input order
// with exactly one entry flagged Recommended (spec §4.6).
func Evaluate(candidates []Candidate, orderQty int, daysRemaining float64, now time.Time) Result {
	if len(candidates) == 0 {
		return Result{}
	}

	options := make([]domain.SupplierOption, len(candidates))
	for i, c := range candidates {
		nowTOD := domain.TimeOfDayFromTime(now)
		orderDate := schedule.NextOrderDate(c.Supplier, now, nowTOD)
		deliveryDate := schedule.DeliveryDate(c.Supplier, orderDate)
		daysUntilDelivery := int(deliveryDate.Sub(truncateToDate(now)).Hours() / 24)

		options[i] = domain.SupplierOption{
			SupplierID:     c.Supplier.ID,
			SupplierName:   c.Supplier.Name,
			UnitPrice:      c.UnitPrice,
			OrderDate:      orderDate,
			DeliveryDate:   deliveryDate,
			DaysUntilDeliv: daysUntilDelivery,
			TotalCost:      c.UnitPrice.MulQty(orderQty),
			Risk:           riskFor(daysUntilDelivery, daysRemaining),
		}
	}

	recommended := selectRecommended(options)
	var recommendedCost domain.Money
	for i := range options {
		if options[i].SupplierID == recommended {
			options[i].Recommended = true
			recommendedCost = options[i].TotalCost
		}
	}

	worst := options[0].TotalCost
	for _, o := range options[1:] {
		if o.TotalCost.GreaterThan(worst) {
			worst = o.TotalCost
		}
	}

	savingsVsMax := worst.Sub(recommendedCost)
	savingsPercent := 0.0
	if !worst.IsZero() {
		savingsPercent = savingsVsMax.Float64() / worst.Float64() * 100
	}

	return Result{
		Options:        options,
		SavingsVsMax:   savingsVsMax,
		SavingsPercent: savingsPercent,
	}
}

// riskFor implements the risk ladder of spec §4.6.
func riskFor(daysUntilDelivery int, daysRemaining float64) domain.Risk {
	d := float64(daysUntilDelivery)
	switch {
	case d > daysRemaining:
		return domain.RiskCritical
	case d > daysRemaining-1:
		return domain.RiskHigh
	case d > daysRemaining-3:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// selectRecommended applies the spec §4.6 selection rule: prefer the
// cheapest among NONE/LOW risk candidates (ties by earliest delivery,
// then supplier id); otherwise the earliest delivery among the
// minimum-risk candidates (ties by cost).
func selectRecommended(options []domain.SupplierOption) uuid.UUID {
	var safeCandidates []domain.SupplierOption
	for _, o := range options {
		if o.Risk == domain.RiskNone || o.Risk == domain.RiskLow {
			safeCandidates = append(safeCandidates, o)
		}
	}

	if len(safeCandidates) > 0 {
		best := safeCandidates[0]
		for _, o := range safeCandidates[1:] {
			if betterByCostThenDelivery(o, best) {
				best = o
			}
		}
		return best.SupplierID
	}

	minRisk := options[0].Risk
	for _, o := range options[1:] {
		if o.Risk < minRisk {
			minRisk = o.Risk
		}
	}

	var atMinRisk []domain.SupplierOption
	for _, o := range options {
		if o.Risk == minRisk {
			atMinRisk = append(atMinRisk, o)
		}
	}

	best := atMinRisk[0]
	for _, o := range atMinRisk[1:] {
		if betterByDeliveryThenCost(o, best) {
			best = o
		}
	}
	return best.SupplierID
}

func betterByCostThenDelivery(a, b domain.SupplierOption) bool {
	if a.TotalCost.Cmp(b.TotalCost) != 0 {
		return a.TotalCost.LessThan(b.TotalCost)
	}
	if !a.DeliveryDate.Equal(b.DeliveryDate) {
		return a.DeliveryDate.Before(b.DeliveryDate)
	}
	return a.SupplierID.String() < b.SupplierID.String()
}

func betterByDeliveryThenCost(a, b domain.SupplierOption) bool {
	if !a.DeliveryDate.Equal(b.DeliveryDate) {
		return a.DeliveryDate.Before(b.DeliveryDate)
	}
	if a.TotalCost.Cmp(b.TotalCost) != 0 {
		return a.TotalCost.LessThan(b.TotalCost)
	}
	return a.SupplierID.String() < b.SupplierID.String()
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
