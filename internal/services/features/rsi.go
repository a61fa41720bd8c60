package features

import "math"

// NeutralRSI is reported whenever RSI cannot be computed.
const NeutralRSI = 50.0

// RSISeries computes RSI from rolling simple means of gains and losses over period deltas.
// The first delta is taken as 0, so the first defined value sits at index period-1.
// Undefined positions are NaN. A window with losses of 0 and gains above 0 yields 100;
// a window with no movement at all stays undefined.
func RSISeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period < 1 || len(closes) < period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	p := float64(period)
	for i := period - 1; i < len(closes); i++ {
		var gSum, lSum float64
		for j := i - period + 1; j <= i; j++ {
			gSum += gains[j]
			lSum += losses[j]
		}
		out[i] = rsiValue(gSum/p, lSum/p)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return math.NaN()
		}
		return 100
	}
	rs := avgGain / avgLoss
	v := 100 - 100/(1+rs)
	return math.Max(0, math.Min(100, v))
}

// LatestRSI returns the most recent RSI value, or NeutralRSI if it is undefined.
func LatestRSI(closes []float64, period int) float64 {
	if len(closes) < period {
		return NeutralRSI
	}
	s := RSISeries(closes, period)
	last := s[len(s)-1]
	if math.IsNaN(last) || math.IsInf(last, 0) {
		return NeutralRSI
	}
	return last
}
