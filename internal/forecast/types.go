// Package forecast implements the per-SKU demand classifier and point
// forecast of spec §4.4: outlier filtering, OLS trend, weekly
// seasonality, pattern classification, and safety stock. It is a pure
// function over a time series — no I/O, no shared state — grounded on
// the struct-free Calculate() shape of the teacher's
// stock_health/calculator.go.
package forecast

import "github.com/rxreplenish/rde/internal/domain"

// Thresholds fixed as design decisions for this specification (spec §9:
// "the exact seasonal-strength threshold and trend-R² cutoffs were not
// stated in source").
const (
	trendSlopePctCutoff   = 0.05 // +-5%/period mean
	trendR2Cutoff         = 0.3
	seasonalStrengthCutoff = 0.2
	seasonalMinWindowDays  = 28
	erraticCVCutoff        = 1.0
	minNonZeroForOutlier   = 7
	minSeriesLenForPattern = 7
)

// Result is the output of Forecast (spec §4.4).
type Result struct {
	Pattern          domain.Pattern
	PatternConfidence float64
	Trend            TrendInfo
	MeanDailyDemand  float64
	Stddev           float64
	SafetyStock      int
}

// TrendInfo carries the OLS trend diagnostics (spec §4.4).
type TrendInfo struct {
	Direction domain.TrendDirection
	Slope     float64
	R2        float64
}

// zScoreFor maps a service level to a z-score per spec §4.4.
func zScoreFor(serviceLevel float64) float64 {
	switch {
	case serviceLevel >= 0.99:
		return 2.33
	case serviceLevel >= 0.95:
		return 1.65
	case serviceLevel >= 0.90:
		return 1.28
	default:
		return 1.65
	}
}
