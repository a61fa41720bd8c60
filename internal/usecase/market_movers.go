package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"FinAgent/internal/domain/models"
	domrepo "FinAgent/internal/domain/repository"
	"FinAgent/internal/services/features"
	"FinAgent/pkg/config"
	"FinAgent/pkg/logger"
	"FinAgent/pkg/metrics"
	"FinAgent/pkg/util"
)

// Baskets are the fixed symbol lists shown on every dashboard.
type Baskets struct {
	Indices  []config.NamedSymbol
	Trending []string
}

// NewBaskets copies the configured baskets so later config mutation cannot leak in.
func NewBaskets(cfg *config.Config) Baskets {
	return Baskets{
		Indices:  append([]config.NamedSymbol(nil), cfg.MarketData.Indices...),
		Trending: append([]string(nil), cfg.MarketData.Trending...),
	}
}

// MoversOptions tune the basket fan-out.
type MoversOptions struct {
	Window         domrepo.Window
	FetchTimeout   time.Duration
	MaxConcurrency int
	Limit          int
}

// MarketMoversUseCase computes index changes and trending gainers/losers.
// A failing symbol is reported and skipped; it never fails the whole basket.
type MarketMoversUseCase struct {
	src     domrepo.MarketDataSource
	baskets Baskets
	opts    MoversOptions
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewMarketMoversUseCase(src domrepo.MarketDataSource, baskets Baskets, opts MoversOptions, m domrepo.Metrics, log *logger.Logger) *MarketMoversUseCase {
	if opts.Window == "" {
		opts.Window = domrepo.Window5d
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 3
	}
	if m == nil {
		m = metrics.Nop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &MarketMoversUseCase{
		src: src,
		baskets: Baskets{
			Indices:  append([]config.NamedSymbol(nil), baskets.Indices...),
			Trending: append([]string(nil), baskets.Trending...),
		},
		opts:    opts,
		metrics: m,
		log:     log,
	}
}

// Indices returns the change of every index that could be computed, in basket order.
func (uc *MarketMoversUseCase) Indices(ctx context.Context) ([]models.IndexChange, []models.SymbolFailure) {
	entries := make([]models.SymbolResult, len(uc.baskets.Indices))
	for i, ix := range uc.baskets.Indices {
		entries[i] = models.SymbolResult{Name: ix.Name, Symbol: ix.Symbol}
	}
	results := uc.fetchBasket(ctx, "index", entries)

	out := make([]models.IndexChange, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, models.IndexChange{Name: r.Name, Symbol: r.Symbol, ChangePercent: r.Metric.ChangePercent})
		}
	}
	return out, failures(results)
}

// Trending returns the trending basket metrics in basket order, plus the ranked gainers and losers.
func (uc *MarketMoversUseCase) Trending(ctx context.Context) (all, gainers, losers []models.ChangeMetric, failed []models.SymbolFailure) {
	entries := make([]models.SymbolResult, len(uc.baskets.Trending))
	for i, sym := range uc.baskets.Trending {
		entries[i] = models.SymbolResult{Name: sym, Symbol: sym}
	}
	results := uc.fetchBasket(ctx, "trending", entries)

	all = make([]models.ChangeMetric, 0, len(results))
	for _, r := range results {
		if r.OK() {
			all = append(all, *r.Metric)
		}
	}
	gainers, losers = RankMovers(all, uc.opts.Limit)
	return all, gainers, losers, failures(results)
}

// Collect runs both baskets concurrently.
func (uc *MarketMoversUseCase) Collect(ctx context.Context) models.MarketMovers {
	var (
		res models.MarketMovers
		wg  sync.WaitGroup
		ixF []models.SymbolFailure
		trF []models.SymbolFailure
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Indices, ixF = uc.Indices(ctx)
	}()
	go func() {
		defer wg.Done()
		res.Trending, res.Gainers, res.Losers, trF = uc.Trending(ctx)
	}()
	wg.Wait()
	res.Failures = append(ixF, trF...)
	return res
}

// fetchBasket fills Metric or Err on each entry. Output order matches input order.
func (uc *MarketMoversUseCase) fetchBasket(ctx context.Context, kind string, entries []models.SymbolResult) []models.SymbolResult {
	start := time.Now()
	sem := make(chan struct{}, uc.opts.MaxConcurrency)
	var wg sync.WaitGroup

	for i := range entries {
		wg.Add(1)
		go func(r *models.SymbolResult) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				r.Err = ctx.Err()
				uc.reportFailure(kind, r)
				return
			}

			m, err := uc.changeFor(ctx, r.Symbol)
			if err != nil {
				r.Err = err
				uc.reportFailure(kind, r)
				return
			}
			r.Metric = m
			uc.metrics.RecordFetch(kind, r.Symbol, nil)
			uc.metrics.RecordLastPrice(r.Symbol, m.LatestPrice)
		}(&entries[i])
	}
	wg.Wait()

	uc.metrics.RecordLatency("basket_"+kind, time.Since(start).Seconds())
	return entries
}

func (uc *MarketMoversUseCase) changeFor(ctx context.Context, symbol string) (*models.ChangeMetric, error) {
	fctx, cancel := context.WithTimeout(ctx, uc.opts.FetchTimeout)
	defer cancel()

	s, err := uc.src.FetchHistory(fctx, symbol, uc.opts.Window)
	if err != nil {
		return nil, err
	}
	if s.Len() < 2 {
		return nil, &models.InsufficientDataError{Symbol: symbol, Have: s.Len(), Need: 2}
	}
	latest, prev, _ := s.LastTwo()
	return &models.ChangeMetric{
		Symbol:        symbol,
		LatestPrice:   latest.Close,
		ChangePercent: features.ChangePercent(latest.Close, prev.Close),
	}, nil
}

func (uc *MarketMoversUseCase) reportFailure(kind string, r *models.SymbolResult) {
	uc.metrics.RecordFetch(kind, r.Symbol, r.Err)
	uc.log.Warn("basket symbol skipped",
		logger.String("basket", kind),
		logger.String("symbol", r.Symbol),
		logger.Error(r.Err),
	)
}

func failures(results []models.SymbolResult) []models.SymbolFailure {
	var out []models.SymbolFailure
	for _, r := range results {
		if r.Err != nil {
			out = append(out, models.SymbolFailure{Name: r.Name, Symbol: r.Symbol, Reason: r.Err.Error()})
		}
	}
	return out
}

// RankMovers returns the top limit gainers (descending change) and losers (ascending change).
// Changes are compared at display precision and ties keep input order.
// A symbol may appear in both lists when fewer than 2*limit metrics exist.
func RankMovers(metrics []models.ChangeMetric, limit int) (gainers, losers []models.ChangeMetric) {
	desc := append([]models.ChangeMetric(nil), metrics...)
	sort.SliceStable(desc, func(i, j int) bool {
		return util.Round2(desc[i].ChangePercent) > util.Round2(desc[j].ChangePercent)
	})
	asc := append([]models.ChangeMetric(nil), metrics...)
	sort.SliceStable(asc, func(i, j int) bool {
		return util.Round2(asc[i].ChangePercent) < util.Round2(asc[j].ChangePercent)
	})

	if len(desc) > limit {
		desc = desc[:limit]
	}
	if len(asc) > limit {
		asc = asc[:limit]
	}
	return desc, asc
}
