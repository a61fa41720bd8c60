package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"FinAgent/internal/domain/models"
	domrepo "FinAgent/internal/domain/repository"
	"FinAgent/pkg/config"
	"FinAgent/pkg/logger"
)

// trendingSource serves every default index plus the trending basket.
func trendingSource() *fakeSource {
	return newFakeSource().
		withCloses("^GSPC", 4000, 4040).
		withCloses("^IXIC", 15000, 14850).
		withCloses("^DJI", 35000, 35000).
		withCloses("^NSEI", 20000, 20200).
		withCloses("^BSESN", 66000, 66660).
		withCloses("TSLA", 100, 105).   // +5
		withCloses("NVDA", 100, 110).   // +10
		withCloses("AAPL", 100, 99).    // -1
		withCloses("MSFT", 100, 102).   // +2
		withCloses("META", 100, 90).    // -10
		withCloses("AMZN", 100, 97).    // -3
		withCloses("GOOGL", 100, 100.5) // +0.5
}

func symbols(ms []models.ChangeMetric) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Symbol
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTrendingRanksGainersAndLosers(t *testing.T) {
	uc := testMovers(trendingSource())

	all, gainers, losers, failed := uc.Trending(context.Background())
	if len(all) != 7 || len(failed) != 0 {
		t.Fatalf("all=%d failed=%d", len(all), len(failed))
	}
	if got := symbols(gainers); !equalStrings(got, []string{"NVDA", "TSLA", "MSFT"}) {
		t.Fatalf("gainers = %v", got)
	}
	if got := symbols(losers); !equalStrings(got, []string{"META", "AMZN", "AAPL"}) {
		t.Fatalf("losers = %v", got)
	}
	if math.Abs(gainers[0].ChangePercent-10) > 1e-9 || gainers[0].LatestPrice != 110 {
		t.Fatalf("top gainer = %+v", gainers[0])
	}
}

func TestTrendingToleratesFailures(t *testing.T) {
	src := trendingSource()
	src.errs["NVDA"] = errors.New("connection reset")
	delete(src.series, "META") // unknown symbol: empty series

	uc := testMovers(src)
	all, gainers, losers, failed := uc.Trending(context.Background())

	if len(all) != 5 {
		t.Fatalf("successes = %d, want 5", len(all))
	}
	if len(failed) != 2 {
		t.Fatalf("failures = %+v", failed)
	}
	if len(gainers) > 3 || len(losers) > 3 {
		t.Fatalf("lists too long: %d %d", len(gainers), len(losers))
	}
	for _, m := range append(gainers, losers...) {
		if m.Symbol == "NVDA" || m.Symbol == "META" {
			t.Fatalf("failed symbol %s ranked", m.Symbol)
		}
	}
}

func TestTrendingSkipsSingleBarSeries(t *testing.T) {
	src := trendingSource().withCloses("TSLA", 100)
	_, _, _, failed := testMovers(src).Trending(context.Background())

	if len(failed) != 1 || failed[0].Symbol != "TSLA" {
		t.Fatalf("failures = %+v", failed)
	}
}

func TestRankMoversFewerThanLimitOverlap(t *testing.T) {
	ms := []models.ChangeMetric{{Symbol: "A", ChangePercent: 1}, {Symbol: "B", ChangePercent: -1}}
	g, l := RankMovers(ms, 3)
	if !equalStrings(symbols(g), []string{"A", "B"}) || !equalStrings(symbols(l), []string{"B", "A"}) {
		t.Fatalf("gainers=%v losers=%v", symbols(g), symbols(l))
	}
}

func TestRankMoversTiesKeepBasketOrder(t *testing.T) {
	ms := []models.ChangeMetric{
		{Symbol: "A", ChangePercent: 1.001},
		{Symbol: "B", ChangePercent: 1.004},
		{Symbol: "C", ChangePercent: 0.5},
	}
	g, _ := RankMovers(ms, 2)
	if !equalStrings(symbols(g), []string{"A", "B"}) {
		t.Fatalf("gainers = %v, display-equal changes must keep order", symbols(g))
	}
	if ms[0].Symbol != "A" || ms[1].Symbol != "B" {
		t.Fatalf("input reordered")
	}
}

func TestIndicesOmitFailedEntries(t *testing.T) {
	src := newFakeSource().
		withCloses("^GSPC", 4000, 4040).
		withCloses("^IXIC", 15000, 14850).
		withCloses("^DJI", 35000, 35000).
		withCloses("^NSEI", 20000, 20200)
	src.errs["^BSESN"] = errors.New("timeout")

	got, failed := testMovers(src).Indices(context.Background())
	if len(got) != 4 || len(failed) != 1 || failed[0].Name != "Sensex" {
		t.Fatalf("indices=%+v failed=%+v", got, failed)
	}
	if got[0].Name != "S&P 500" || math.Abs(got[0].ChangePercent-1) > 1e-9 {
		t.Fatalf("first index = %+v", got[0])
	}
}

func TestBasketFetchIsBounded(t *testing.T) {
	src := trendingSource()
	for _, s := range config.DefaultTrending() {
		src.delay[s] = 20 * time.Millisecond
	}
	uc := NewMarketMoversUseCase(src, testBaskets(), MoversOptions{
		FetchTimeout:   time.Second,
		MaxConcurrency: 2,
	}, nil, logger.NewNop())

	uc.Trending(context.Background())
	if src.maxSeen > 2 {
		t.Fatalf("max concurrent fetches = %d, want <= 2", src.maxSeen)
	}
}

func TestBasketPerSymbolTimeout(t *testing.T) {
	src := trendingSource()
	src.delay["TSLA"] = time.Second
	uc := NewMarketMoversUseCase(src, testBaskets(), MoversOptions{
		Window:         domrepo.Window5d,
		FetchTimeout:   30 * time.Millisecond,
		MaxConcurrency: 7,
	}, nil, logger.NewNop())

	all, _, _, failed := uc.Trending(context.Background())
	if len(all) != 6 || len(failed) != 1 || failed[0].Symbol != "TSLA" {
		t.Fatalf("all=%d failed=%+v", len(all), failed)
	}
}

func TestNewBasketsCopies(t *testing.T) {
	var cfg config.Config
	cfg.MarketData.Trending = []string{"AAPL"}
	cfg.MarketData.Indices = config.DefaultIndices()
	b := NewBaskets(&cfg)
	cfg.MarketData.Trending[0] = "MSFT"
	if b.Trending[0] != "AAPL" {
		t.Fatalf("baskets alias config")
	}
}
