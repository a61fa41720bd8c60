package models

import "time"

// Bar is one daily OHLCV observation.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// PriceSeries is a symbol's bars in ascending date order.
// It is not modified after the data source returns it.
type PriceSeries struct {
	Symbol string
	Bars   []Bar
}

func (s PriceSeries) Len() int { return len(s.Bars) }

func (s PriceSeries) Empty() bool { return len(s.Bars) == 0 }

// Closes returns a fresh slice of closing prices.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// LastTwo returns the latest bar and the one before it.
// With a single bar, prev is the latest bar itself. ok is false for an empty series.
func (s PriceSeries) LastTwo() (latest, prev Bar, ok bool) {
	n := len(s.Bars)
	switch {
	case n == 0:
		return Bar{}, Bar{}, false
	case n == 1:
		return s.Bars[0], s.Bars[0], true
	default:
		return s.Bars[n-1], s.Bars[n-2], true
	}
}

// SymbolMetadata is descriptive data about a symbol. Beta is nil when the source has none.
type SymbolMetadata struct {
	Symbol   string
	Name     string
	Currency string
	Beta     *float64
}
