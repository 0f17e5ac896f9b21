// Package coverage turns a forecast and current stock level into
// actionable quantities and dates (spec §4.5). Like schedule and
// forecast, it is a pure function package grounded on the teacher's
// stock_health calculator.
package coverage

import (
	"math"
	"time"

	"github.com/rxreplenish/rde/internal/domain"
)

// MaxCoverageDays bounds every day-count output; a future date implied
// by more days than this is emitted as absent ("unbounded").
const MaxCoverageDays = 365

// DefaultPeriods is the horizon set used by Scenarios when the caller
// does not override it.
var DefaultPeriods = []int{1, 7, 30}

// Status mirrors the urgency/coverage-status thresholds of spec §4.7,
// used for currentCoverage's status field.
type Status int

const (
	StatusCritical Status = iota
	StatusUrgent
	StatusLow
	StatusGood
	StatusOverstocked
)

func (s Status) String() string {
	switch s {
	case StatusCritical:
		return "CRITICAL"
	case StatusUrgent:
		return "URGENT"
	case StatusLow:
		return "LOW"
	case StatusGood:
		return "GOOD"
	case StatusOverstocked:
		return "OVERSTOCKED"
	default:
		return "UNKNOWN"
	}
}

// CurrentCoverageResult is the output of CurrentCoverage.
type CurrentCoverageResult struct {
	DaysRemaining float64
	Status        Status
	StockoutDate  *time.Time
}

// CurrentCoverage computes days-remaining and a status bucket for the
// current stock level, per spec §4.5 and §4.7.
func CurrentCoverage(currentStock int, meanDailyDemand float64, now time.Time) CurrentCoverageResult {
	var daysRemaining float64
	if meanDailyDemand > 0 {
		daysRemaining = math.Min(float64(currentStock)/meanDailyDemand, MaxCoverageDays)
	} else {
		daysRemaining = MaxCoverageDays
	}

	status := statusFor(daysRemaining)

	var stockoutDate *time.Time
	if daysRemaining < MaxCoverageDays {
		d := now.AddDate(0, 0, int(math.Ceil(daysRemaining)))
		stockoutDate = &d
	}

	return CurrentCoverageResult{
		DaysRemaining: daysRemaining,
		Status:        status,
		StockoutDate:  stockoutDate,
	}
}

func statusFor(daysRemaining float64) Status {
	switch {
	case daysRemaining < 1:
		return StatusCritical
	case daysRemaining < 3:
		return StatusUrgent
	case daysRemaining < 7:
		return StatusLow
	case daysRemaining <= 30:
		return StatusGood
	default:
		return StatusOverstocked
	}
}

// OrderQuantity computes the quantity to order so that, after arrival,
// stock covers horizonDays of demand plus safety stock, rounded up to
// the nearest multiple of moq (spec §4.5). moq <= 0 is treated as 1.
func OrderQuantity(currentStock int, meanDailyDemand float64, horizonDays int, safetyStock int, moq int) int {
	if moq <= 0 {
		moq = 1
	}

	target := int(math.Ceil(meanDailyDemand*float64(horizonDays) + float64(safetyStock)))
	qty := target - currentStock
	if qty < 0 {
		qty = 0
	}

	if qty == 0 {
		return 0
	}

	remainder := qty % moq
	if remainder != 0 {
		qty += moq - remainder
	}

	return qty
}

// Scenario is one entry of Scenarios' output (spec §4.5).
type Scenario struct {
	Label              string
	CoverageDays       int
	OrderQuantity      int
	FinalStock         int
	ActualCoverageDays float64
	TotalCost          domain.Money
	CostPerDay         domain.Money
}

// Scenarios computes one Scenario per requested coverage horizon
// (spec §4.5). periods defaults to DefaultPeriods when nil.
func Scenarios(currentStock int, meanDailyDemand float64, safetyStock int, unitPrice domain.Money, moq int, periods []int) []Scenario {
	if periods == nil {
		periods = DefaultPeriods
	}

	out := make([]Scenario, 0, len(periods))
	for _, days := range periods {
		qty := OrderQuantity(currentStock, meanDailyDemand, days, safetyStock, moq)
		finalStock := currentStock + qty

		var actualCoverageDays float64
		if meanDailyDemand > 0 {
			actualCoverageDays = math.Min(float64(finalStock)/meanDailyDemand, MaxCoverageDays)
		} else {
			actualCoverageDays = MaxCoverageDays
		}

		totalCost := unitPrice.MulQty(qty)
		costPerDay := totalCost.DivInt(days)

		out = append(out, Scenario{
			Label:              scenarioLabel(days),
			CoverageDays:       days,
			OrderQuantity:      qty,
			FinalStock:         finalStock,
			ActualCoverageDays: actualCoverageDays,
			TotalCost:          totalCost,
			CostPerDay:         costPerDay,
		})
	}

	return out
}

func scenarioLabel(days int) string {
	switch days {
	case 1:
		return "1-day"
	case 7:
		return "1-week"
	case 14:
		return "2-week"
	case 30:
		return "1-month"
	case 60:
		return "2-month"
	case 90:
		return "3-month"
	default:
		return ""
	}
}
