package features

import (
	"math"

	"FinAgent/internal/domain/models"
)

// PctReturns computes simple returns r_t = (C_t - C_{t-1}) / C_{t-1}.
// It returns a slice of length len(closes)-1, or nil if insufficient data.
// Steps with a non-positive previous close contribute 0.
func PctReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (closes[i]-prev)/prev)
	}
	return out
}

// Volatility is the sample standard deviation of day-over-day percent returns, in percent.
// Fewer than 2 returns yields 0.
func Volatility(closes []float64) float64 {
	r := PctReturns(closes)
	if len(r) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range r {
		sum += v
	}
	n := float64(len(r))
	mean := sum / n
	ss := 0.0
	for _, v := range r {
		d := v - mean
		ss += d * d
	}
	variance := ss / (n - 1)
	if variance <= 0 || math.IsNaN(variance) {
		return 0
	}
	return math.Sqrt(variance) * 100
}

// ChangePercent returns (cur - prev) / prev * 100, or 0 when prev is not positive.
func ChangePercent(cur, prev float64) float64 {
	if prev <= 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

// MeanVolume is the arithmetic mean volume over all bars, 0 for none.
func MeanVolume(bars []models.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bars {
		sum += float64(b.Volume)
	}
	return sum / float64(len(bars))
}

// Snapshot computes the indicator set for a close series.
func Snapshot(closes []float64, rsiPeriod int) models.IndicatorSnapshot {
	return models.IndicatorSnapshot{
		RSI:               LatestRSI(closes, rsiPeriod),
		VolatilityPercent: Volatility(closes),
	}
}
