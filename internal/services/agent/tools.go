package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FinAgent/internal/domain/models"
	domrepo "FinAgent/internal/domain/repository"
	"FinAgent/internal/services/features"
	"FinAgent/pkg/util"
)

const (
	toolPriceHistory = "get_price_history"
	toolBeta         = "get_beta"

	// maxToolBars caps how many daily bars are returned to the model.
	maxToolBars = 30
	rsiPeriod   = 14
)

type toolSpec struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

var toolSpecs = []toolSpec{
	{
		Name: toolPriceHistory,
		Description: "Daily OHLCV history for a ticker with a summary: latest close, change vs previous close, " +
			"period high and low, average volume, 14-day RSI and daily volatility in percent.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"symbol": map[string]interface{}{"type": "string", "description": "Ticker, e.g. AAPL or RELIANCE.NS"},
				"window": map[string]interface{}{
					"type": "string",
					"enum": []string{"5d", "1mo", "3mo", "6mo", "1y"},
				},
			},
			"required": []string{"symbol"},
		},
	},
	{
		Name:        toolBeta,
		Description: "Beta of a ticker versus its market, plus its name and currency when known.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"symbol": map[string]interface{}{"type": "string"},
			},
			"required": []string{"symbol"},
		},
	},
}

type toolInput struct {
	Symbol string `json:"symbol"`
	Window string `json:"window"`
}

type barOut struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

type historyOut struct {
	Symbol            string   `json:"symbol"`
	Window            string   `json:"window"`
	LatestClose       float64  `json:"latest_close"`
	ChangePercent     float64  `json:"change_percent"`
	PeriodHigh        float64  `json:"period_high"`
	PeriodLow         float64  `json:"period_low"`
	AverageVolume     float64  `json:"average_volume"`
	RSI               float64  `json:"rsi_14"`
	VolatilityPercent float64  `json:"volatility_percent"`
	Bars              []barOut `json:"bars"`
}

type betaOut struct {
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Beta     *float64 `json:"beta"`
}

// toolbox executes tool calls against the market data source.
type toolbox struct {
	src     domrepo.MarketDataSource
	timeout time.Duration
}

// run returns the tool result text. Lookup failures are reported to the model, not to the caller.
func (t *toolbox) run(ctx context.Context, name string, raw json.RawMessage) (string, bool) {
	var in toolInput
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &in); err != nil {
			return fmt.Sprintf("invalid input: %v", err), true
		}
	}
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if in.Symbol == "" {
		return "symbol is required", true
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var (
		out interface{}
		err error
	)
	switch name {
	case toolPriceHistory:
		out, err = t.history(ctx, in)
	case toolBeta:
		out, err = t.beta(ctx, in.Symbol)
	default:
		return fmt.Sprintf("unknown tool %q", name), true
	}
	if err != nil {
		return err.Error(), true
	}
	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf("encode result: %v", err), true
	}
	return string(b), false
}

func (t *toolbox) history(ctx context.Context, in toolInput) (*historyOut, error) {
	window := domrepo.NormalizeWindow(in.Window, domrepo.Window1mo)
	series, err := t.src.FetchHistory(ctx, in.Symbol, window)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", in.Symbol, err)
	}
	if series.Empty() {
		return nil, &models.NotFoundError{Ticker: in.Symbol}
	}

	latest, prev, _ := series.LastTwo()
	closes := series.Closes()
	out := &historyOut{
		Symbol:            in.Symbol,
		Window:            string(window),
		LatestClose:       util.Round2(latest.Close),
		ChangePercent:     util.Round2(features.ChangePercent(latest.Close, prev.Close)),
		PeriodHigh:        latest.High,
		PeriodLow:         latest.Low,
		AverageVolume:     util.Round2(features.MeanVolume(series.Bars)),
		RSI:               util.Round2(features.LatestRSI(closes, rsiPeriod)),
		VolatilityPercent: util.Round2(features.Volatility(closes)),
	}
	for _, b := range series.Bars {
		if b.High > out.PeriodHigh {
			out.PeriodHigh = b.High
		}
		if b.Low > 0 && b.Low < out.PeriodLow {
			out.PeriodLow = b.Low
		}
	}
	out.PeriodHigh = util.Round2(out.PeriodHigh)
	out.PeriodLow = util.Round2(out.PeriodLow)

	bars := series.Bars
	if len(bars) > maxToolBars {
		bars = bars[len(bars)-maxToolBars:]
	}
	out.Bars = make([]barOut, 0, len(bars))
	for _, b := range bars {
		out.Bars = append(out.Bars, barOut{
			Date:   b.Date.Format("2006-01-02"),
			Open:   util.Round2(b.Open),
			High:   util.Round2(b.High),
			Low:    util.Round2(b.Low),
			Close:  util.Round2(b.Close),
			Volume: b.Volume,
		})
	}
	return out, nil
}

func (t *toolbox) beta(ctx context.Context, symbol string) (*betaOut, error) {
	md, err := t.src.FetchMetadata(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata for %s: %w", symbol, err)
	}
	out := &betaOut{Symbol: symbol, Name: md.Name, Currency: md.Currency}
	if md.Beta != nil {
		b := util.Round2(*md.Beta)
		out.Beta = &b
	}
	return out, nil
}
