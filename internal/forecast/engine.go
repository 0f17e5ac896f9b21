package forecast

import (
	"math"
	"sort"

	"github.com/rxreplenish/rde/internal/domain"
)

// Forecast classifies the demand pattern of series (oldest-first, daily
// quantities) and produces a point forecast of mean daily demand with
// confidence, per spec §4.4. leadTimeDays feeds the safety-stock
// calculation; serviceLevel maps to a z-score.
func Forecast(series []float64, leadTimeDays int, serviceLevel float64) Result {
	n := len(series)

	if n < minSeriesLenForPattern {
		mean := meanOf(series)
		return Result{
			Pattern:           domain.PatternErratic,
			PatternConfidence: 0,
			Trend:             TrendInfo{Direction: domain.TrendSteady},
			MeanDailyDemand:   mean,
			Stddev:            stddevOf(series, mean),
			SafetyStock:       0,
		}
	}

	if allZero(series) {
		return Result{
			Pattern:           domain.PatternSteady,
			PatternConfidence: 0,
			Trend:             TrendInfo{Direction: domain.TrendSteady},
			MeanDailyDemand:   0,
			Stddev:            0,
			SafetyStock:       0,
		}
	}

	filtered := filterOutliers(series)

	trend := fitTrend(filtered)
	seasonal, seasonalStrength, weekdayFactors := analyzeSeasonality(series, n)

	mean := meanOf(filtered)
	sd := stddevOf(filtered, mean)
	cv := 0.0
	if mean > 0 {
		cv = sd / mean
	}

	pattern := classify(cv, trend, seasonal)
	confidence := confidenceFor(pattern, trend, seasonalStrength, cv)
	pointForecast := pointForecastFor(pattern, filtered, mean, trend, weekdayFactors, n)

	zScore := zScoreFor(serviceLevel)
	safetyStock := int(math.Ceil(math.Max(0, zScore*sd*math.Sqrt(math.Max(0, float64(leadTimeDays))))))

	return Result{
		Pattern:           pattern,
		PatternConfidence: confidence,
		Trend:             trend,
		MeanDailyDemand:   pointForecast,
		Stddev:            sd,
		SafetyStock:       safetyStock,
	}
}

func allZero(series []float64) bool {
	for _, v := range series {
		if v != 0 {
			return false
		}
	}
	return true
}

func meanOf(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

func stddevOf(series []float64, mean float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range series {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(series)))
}

func varianceOf(series []float64, mean float64) float64 {
	sd := stddevOf(series, mean)
	return sd * sd
}

// filterOutliers replaces values outside [Q1-1.5*IQR, Q3+1.5*IQR] with
// the series median, per spec §4.4 step 1. Skipped when fewer than 7
// non-zero points exist.
func filterOutliers(series []float64) []float64 {
	nonZero := 0
	for _, v := range series {
		if v != 0 {
			nonZero++
		}
	}
	if nonZero < minNonZeroForOutlier {
		out := make([]float64, len(series))
		copy(out, series)
		return out
	}

	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)

	median := percentile(sorted, 0.5)
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	out := make([]float64, len(series))
	for i, v := range series {
		if v < lower || v > upper {
			out[i] = median
		} else {
			out[i] = v
		}
	}
	return out
}

// percentile computes a linear-interpolated percentile over an
// already-sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := p * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// fitTrend runs ordinary least squares of quantity on index, per spec
// §4.4 step 2.
func fitTrend(series []float64) TrendInfo {
	n := float64(len(series))
	if n < 2 {
		return TrendInfo{Direction: domain.TrendSteady}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return TrendInfo{Direction: domain.TrendSteady}
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	// R^2
	meanY := sumY / n
	var ssTot, ssRes float64
	for i, y := range series {
		x := float64(i)
		pred := slope*x + intercept
		ssRes += (y - pred) * (y - pred)
		ssTot += (y - meanY) * (y - meanY)
	}

	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	direction := domain.TrendSteady
	meanAbs := math.Abs(meanY)
	relativeSlope := 0.0
	if meanAbs > 0 {
		relativeSlope = slope / meanAbs
	}

	if relativeSlope > trendSlopePctCutoff && r2 >= trendR2Cutoff {
		direction = domain.TrendGrowing
	} else if relativeSlope < -trendSlopePctCutoff && r2 >= trendR2Cutoff {
		direction = domain.TrendDeclining
	}

	return TrendInfo{Direction: direction, Slope: slope, R2: r2}
}

// analyzeSeasonality computes weekly seasonality by averaging each
// weekday across full weeks in the window, per spec §4.4 step 3. series
// is oldest-first; index n-1 is "today". weekdayFactors[w] is the ratio
// of weekday w's mean to the overall mean (1.0 when flat).
func analyzeSeasonality(series []float64, n int) (seasonal bool, strength float64, weekdayFactors [7]float64) {
	for i := range weekdayFactors {
		weekdayFactors[i] = 1.0
	}

	if n < seasonalMinWindowDays {
		return false, 0, weekdayFactors
	}

	// The oldest len(series)%7 days form a partial week and are left out
	// of the weekday buckets, so every bucket averages full weeks only.
	start := len(series) % 7
	var sums [7]float64
	var counts [7]int
	for i := start; i < len(series); i++ {
		v := series[i]
		// index n-1 is "today"; weekday bucket is arbitrary but
		// consistent (no calendar alignment is required by spec, only
		// "averaging each weekday across full weeks").
		w := (i - start) % 7
		sums[w] += v
		counts[w]++
	}

	var weekdayMeans [7]float64
	for w := 0; w < 7; w++ {
		if counts[w] > 0 {
			weekdayMeans[w] = sums[w] / float64(counts[w])
		}
	}

	overallMean := meanOf(series)
	weekdayMeanSlice := weekdayMeans[:]
	weekdayVariance := varianceOf(weekdayMeanSlice, overallMean)
	seriesVariance := varianceOf(series, overallMean)

	if seriesVariance == 0 {
		return false, 0, weekdayFactors
	}

	strength = weekdayVariance / seriesVariance

	for w := 0; w < 7; w++ {
		if overallMean > 0 {
			weekdayFactors[w] = weekdayMeans[w] / overallMean
		}
	}

	seasonal = strength >= seasonalStrengthCutoff
	return seasonal, strength, weekdayFactors
}

// classify applies the priority ladder of spec §4.4 step 4.
func classify(cv float64, trend TrendInfo, seasonal bool) domain.Pattern {
	strongTrendOrSeason := seasonal || trend.Direction != domain.TrendSteady

	if cv > erraticCVCutoff && !strongTrendOrSeason {
		return domain.PatternErratic
	}
	if seasonal {
		return domain.PatternSeasonal
	}
	if trend.Direction == domain.TrendGrowing {
		return domain.PatternGrowing
	}
	if trend.Direction == domain.TrendDeclining {
		return domain.PatternDeclining
	}
	return domain.PatternSteady
}

// confidenceFor derives pattern confidence per spec §4.4 step 4.
func confidenceFor(pattern domain.Pattern, trend TrendInfo, seasonalStrength, cv float64) float64 {
	clip := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}

	switch pattern {
	case domain.PatternGrowing, domain.PatternDeclining:
		return clip(trend.R2)
	case domain.PatternSeasonal:
		return clip(seasonalStrength)
	case domain.PatternSteady:
		return clip(1 - cv/2)
	case domain.PatternErratic:
		return clip((1 - cv) / 2)
	default:
		return 0
	}
}

// pointForecastFor computes the point forecast of mean daily demand per
// spec §4.4 step 5.
func pointForecastFor(pattern domain.Pattern, filtered []float64, mean float64, trend TrendInfo, weekdayFactors [7]float64, n int) float64 {
	switch pattern {
	case domain.PatternGrowing, domain.PatternDeclining:
		projected := mean + trend.Slope*float64(n)
		return math.Max(0, projected)
	case domain.PatternSeasonal:
		// Scale the mean by the average weekday factor over the next
		// horizon week (spec: "next-horizon average weekday seasonal
		// factor").
		sum := 0.0
		for _, f := range weekdayFactors {
			sum += f
		}
		avgFactor := sum / float64(len(weekdayFactors))
		return math.Max(0, mean*avgFactor)
	default: // STEADY, ERRATIC
		return math.Max(0, trimmedMean(filtered))
	}
}

// trimmedMean drops the top/bottom 10% of values (already outlier
// filtered) before averaging, a standard robust-mean treatment for
// STEADY/ERRATIC series.
func trimmedMean(series []float64) float64 {
	if len(series) < 5 {
		return meanOf(series)
	}
	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)

	trim := len(sorted) / 10
	trimmed := sorted[trim : len(sorted)-trim]
	if len(trimmed) == 0 {
		return meanOf(series)
	}
	return meanOf(trimmed)
}
