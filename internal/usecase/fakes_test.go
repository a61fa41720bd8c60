package usecase

import (
	"context"
	"sync"
	"time"

	"FinAgent/internal/domain/models"
	domrepo "FinAgent/internal/domain/repository"
	"FinAgent/pkg/config"
	"FinAgent/pkg/logger"
)

// fakeSource serves canned series. Symbols missing from series return an empty series.
type fakeSource struct {
	mu       sync.Mutex
	series   map[string]models.PriceSeries
	errs     map[string]error
	beta     map[string]float64
	metaErr  error
	delay    map[string]time.Duration
	calls    map[string]int
	inFlight int
	maxSeen  int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		series: map[string]models.PriceSeries{},
		errs:   map[string]error{},
		beta:   map[string]float64{},
		delay:  map[string]time.Duration{},
		calls:  map[string]int{},
	}
}

func (f *fakeSource) withCloses(symbol string, closes ...float64) *fakeSource {
	f.series[symbol] = seriesOf(symbol, closes, nil)
	return f
}

func (f *fakeSource) FetchHistory(ctx context.Context, symbol string, _ domrepo.Window) (models.PriceSeries, error) {
	f.mu.Lock()
	f.calls[symbol]++
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	d := f.delay[symbol]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return models.PriceSeries{Symbol: symbol}, ctx.Err()
		}
	}
	if err := f.errs[symbol]; err != nil {
		return models.PriceSeries{Symbol: symbol}, err
	}
	if s, ok := f.series[symbol]; ok {
		return s, nil
	}
	return models.PriceSeries{Symbol: symbol}, nil
}

func (f *fakeSource) FetchMetadata(_ context.Context, symbol string) (models.SymbolMetadata, error) {
	if f.metaErr != nil {
		return models.SymbolMetadata{}, f.metaErr
	}
	m := models.SymbolMetadata{Symbol: symbol}
	if b, ok := f.beta[symbol]; ok {
		m.Beta = &b
	}
	return m, nil
}

func seriesOf(symbol string, closes []float64, volumes []int64) models.PriceSeries {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		var v int64 = 1000
		if volumes != nil {
			v = volumes[i]
		}
		bars[i] = models.Bar{
			Date:   day.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: v,
		}
	}
	return models.PriceSeries{Symbol: symbol, Bars: bars}
}

func testBaskets() Baskets {
	return Baskets{
		Indices:  config.DefaultIndices(),
		Trending: config.DefaultTrending(),
	}
}

func testMovers(src domrepo.MarketDataSource) *MarketMoversUseCase {
	return NewMarketMoversUseCase(src, testBaskets(), MoversOptions{
		Window:         domrepo.Window5d,
		FetchTimeout:   time.Second,
		MaxConcurrency: 3,
		Limit:          3,
	}, nil, logger.NewNop())
}
