package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"FinAgent/internal/di"
	"FinAgent/internal/domain/models"
	domrepo "FinAgent/internal/domain/repository"
	"FinAgent/internal/usecase"
	"FinAgent/pkg/config"
)

type closesSource map[string][]float64

func (s closesSource) FetchHistory(_ context.Context, symbol string, _ domrepo.Window) (models.PriceSeries, error) {
	closes, ok := s[symbol]
	if !ok {
		return models.PriceSeries{}, errors.New("unavailable")
	}
	bars := make([]models.Bar, len(closes))
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = models.Bar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	return models.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

func (s closesSource) FetchMetadata(context.Context, string) (models.SymbolMetadata, error) {
	return models.SymbolMetadata{}, errors.New("no metadata")
}

func fakeLoader(src domrepo.MarketDataSource) Loader {
	return func(string, string) (*di.UseCases, error) {
		baskets := usecase.Baskets{
			Indices:  []config.NamedSymbol{{Name: "S&P 500", Symbol: "^GSPC"}},
			Trending: []string{"AAA", "BBB", "CCC"},
		}
		movers := usecase.NewMarketMoversUseCase(src, baskets, usecase.MoversOptions{MaxConcurrency: 2, Limit: 1}, nil, nil)
		return &di.UseCases{Movers: movers}, nil
	}
}

func TestMoversCommandPrintsJSON(t *testing.T) {
	src := closesSource{
		"^GSPC": {100, 101},
		"AAA":   {10, 11},
		"BBB":   {10, 9},
	}
	root := NewRootCmd(fakeLoader(src))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"movers"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var got moversOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %s: %v", out.String(), err)
	}
	if got.Indices["S&P 500"] != 1 {
		t.Fatalf("indices = %v", got.Indices)
	}
	if len(got.Gainers) != 1 || got.Gainers[0].Ticker != "AAA" || got.Gainers[0].ChangePercent != 10 {
		t.Fatalf("gainers = %+v", got.Gainers)
	}
	if len(got.Losers) != 1 || got.Losers[0].Ticker != "BBB" {
		t.Fatalf("losers = %+v", got.Losers)
	}
	if len(got.Failures) != 1 || got.Failures[0].Symbol != "CCC" {
		t.Fatalf("failures = %+v", got.Failures)
	}
}

func TestNewsCommandRejectsBadFlagsBeforeLoading(t *testing.T) {
	loaded := false
	root := NewRootCmd(func(string, string) (*di.UseCases, error) {
		loaded = true
		return nil, errors.New("should not load")
	})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	for _, args := range [][]string{
		{"news", "--region", "MARS"},
		{"news", "--limit", "0"},
	} {
		root.SetArgs(args)
		if err := root.Execute(); err == nil {
			t.Fatalf("%s: expected error", strings.Join(args, " "))
		}
	}
	if loaded {
		t.Fatalf("use cases loaded despite invalid flags")
	}
}

func TestDashboardCommandArgs(t *testing.T) {
	root := NewRootCmd(fakeLoader(closesSource{}))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"dashboard", "AAPL", "MSFT"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error for two tickers")
	}
}
