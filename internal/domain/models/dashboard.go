package models

import "time"

// ChangeMetric is a symbol's latest price and its change against the previous close.
type ChangeMetric struct {
	Symbol        string
	LatestPrice   float64
	ChangePercent float64
}

// IndexChange is the change of one named index.
type IndexChange struct {
	Name          string
	Symbol        string
	ChangePercent float64
}

// SymbolResult is the outcome of processing one basket symbol.
// Exactly one of Metric and Err is set.
type SymbolResult struct {
	Name   string
	Symbol string
	Metric *ChangeMetric
	Err    error
}

func (r SymbolResult) OK() bool { return r.Err == nil && r.Metric != nil }

// SymbolFailure records a basket symbol that was skipped.
type SymbolFailure struct {
	Name   string
	Symbol string
	Reason string
}

// MarketMovers is the output of the index and trending baskets.
type MarketMovers struct {
	Indices  []IndexChange
	Trending []ChangeMetric
	Gainers  []ChangeMetric
	Losers   []ChangeMetric
	Failures []SymbolFailure
}

// IndicatorSnapshot holds the indicators computed for the focal ticker.
type IndicatorSnapshot struct {
	RSI               float64
	VolatilityPercent float64
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// LevelForScore maps a risk score to its level: <=2 Low, <=4 Moderate, otherwise High.
func LevelForScore(score int) RiskLevel {
	switch {
	case score <= 2:
		return RiskLow
	case score <= 4:
		return RiskModerate
	default:
		return RiskHigh
	}
}

type RiskAssessment struct {
	Score      int
	Level      RiskLevel
	Reasons    []string
	RSI        float64
	Volatility float64
	Beta       float64
}

// StockDetail describes the focal ticker's latest session.
type StockDetail struct {
	Ticker        string
	Price         float64
	Change        float64
	ChangePercent float64
	Open          float64
	PreviousClose float64
	DayHigh       float64
	DayLow        float64
	Volume        int64
}

// DashboardSnapshot is the assembled dashboard for one ticker at one point in time.
type DashboardSnapshot struct {
	Ticker      string
	Indices     []IndexChange
	Gainers     []ChangeMetric
	Losers      []ChangeMetric
	StockLookup StockDetail
	Indicators  IndicatorSnapshot
	Risk        RiskAssessment
	VolumeAlert bool
	Degraded    []SymbolFailure
	GeneratedAt time.Time
}

// IndicesByName returns the index changes keyed by display name.
func (s DashboardSnapshot) IndicesByName() map[string]float64 {
	out := make(map[string]float64, len(s.Indices))
	for _, ix := range s.Indices {
		out[ix.Name] = ix.ChangePercent
	}
	return out
}
