package usecase

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"FinAgent/internal/domain/models"
	domrepo "FinAgent/internal/domain/repository"
	"FinAgent/internal/services/features"
	"FinAgent/internal/services/risk"
	"FinAgent/pkg/config"
	"FinAgent/pkg/logger"
	"FinAgent/pkg/metrics"
)

// DashboardOptions tune the focal ticker pipeline.
type DashboardOptions struct {
	DefaultTicker         string
	Window                domrepo.Window
	RSIPeriod             int
	VolumeAlertMultiplier float64
	FetchTimeout          time.Duration
}

// DashboardOptionsFromConfig reads the dashboard and market_data config sections.
func DashboardOptionsFromConfig(cfg *config.Config) DashboardOptions {
	return DashboardOptions{
		DefaultTicker:         cfg.Dashboard.DefaultTicker,
		Window:                domrepo.NormalizeWindow(cfg.Dashboard.HistoryWindow, domrepo.Window6mo),
		RSIPeriod:             cfg.Dashboard.RSIPeriod,
		VolumeAlertMultiplier: cfg.Dashboard.VolumeAlertMultiplier,
		FetchTimeout:          cfg.MarketData.FetchTimeout,
	}
}

// DashboardUseCase assembles a point-in-time dashboard for one ticker.
// Basket failures degrade the snapshot; only the focal ticker's history can fail the call.
type DashboardUseCase struct {
	src     domrepo.MarketDataSource
	movers  *MarketMoversUseCase
	scorer  *risk.Scorer
	opts    DashboardOptions
	metrics domrepo.Metrics
	log     *logger.Logger
	now     func() time.Time

	betaWarned atomic.Bool
}

func NewDashboardUseCase(src domrepo.MarketDataSource, movers *MarketMoversUseCase, scorer *risk.Scorer, opts DashboardOptions, m domrepo.Metrics, log *logger.Logger) *DashboardUseCase {
	if opts.DefaultTicker == "" {
		opts.DefaultTicker = "AAPL"
	}
	if opts.Window == "" {
		opts.Window = domrepo.Window6mo
	}
	if opts.RSIPeriod < 2 {
		opts.RSIPeriod = 14
	}
	if opts.VolumeAlertMultiplier <= 0 {
		opts.VolumeAlertMultiplier = 1.5
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if m == nil {
		m = metrics.Nop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &DashboardUseCase{
		src:     src,
		movers:  movers,
		scorer:  scorer,
		opts:    opts,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// NormalizeTicker trims and upper-cases a ticker.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

type tickerDetail struct {
	stock       models.StockDetail
	indicators  models.IndicatorSnapshot
	risk        models.RiskAssessment
	volumeAlert bool
}

// Assemble builds the dashboard for ticker. An empty ticker means the configured default.
// It returns *models.NotFoundError when the ticker has no history and
// *models.UpstreamError when the history fetch fails.
func (uc *DashboardUseCase) Assemble(ctx context.Context, ticker string) (*models.DashboardSnapshot, error) {
	start := time.Now()
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		ticker = uc.opts.DefaultTicker
	}

	var (
		g       errgroup.Group
		indices []models.IndexChange
		ixFail  []models.SymbolFailure
		gainers []models.ChangeMetric
		losers  []models.ChangeMetric
		trFail  []models.SymbolFailure
		detail  tickerDetail
	)

	g.Go(func() error {
		indices, ixFail = uc.movers.Indices(ctx)
		return nil
	})
	g.Go(func() error {
		_, gainers, losers, trFail = uc.movers.Trending(ctx)
		return nil
	})
	g.Go(func() error {
		var err error
		detail, err = uc.tickerDetail(ctx, ticker)
		return err
	})

	err := g.Wait()
	uc.metrics.RecordLatency("dashboard_assemble", time.Since(start).Seconds())
	if err != nil {
		uc.logFailure(ticker, err)
		return nil, err
	}

	degraded := append(ixFail, trFail...)
	if len(degraded) > 0 {
		skipped := make([]string, len(degraded))
		for i, f := range degraded {
			skipped[i] = f.Symbol
		}
		uc.log.Info("dashboard assembled with degraded baskets",
			logger.String("ticker", ticker),
			logger.Strings("skipped", skipped),
		)
	}

	return &models.DashboardSnapshot{
		Ticker:      ticker,
		Indices:     indices,
		Gainers:     gainers,
		Losers:      losers,
		StockLookup: detail.stock,
		Indicators:  detail.indicators,
		Risk:        detail.risk,
		VolumeAlert: detail.volumeAlert,
		Degraded:    degraded,
		GeneratedAt: uc.now().UTC(),
	}, nil
}

func (uc *DashboardUseCase) tickerDetail(ctx context.Context, ticker string) (tickerDetail, error) {
	var d tickerDetail

	hctx, cancel := context.WithTimeout(ctx, uc.opts.FetchTimeout)
	series, err := uc.src.FetchHistory(hctx, ticker, uc.opts.Window)
	cancel()
	uc.metrics.RecordFetch("ticker", ticker, err)
	if err != nil {
		return d, &models.UpstreamError{Ticker: ticker, Err: err}
	}
	if series.Empty() {
		return d, &models.NotFoundError{Ticker: ticker}
	}

	latest, prev, _ := series.LastTwo()
	d.stock = models.StockDetail{
		Ticker:        ticker,
		Price:         latest.Close,
		Change:        latest.Close - prev.Close,
		ChangePercent: features.ChangePercent(latest.Close, prev.Close),
		Open:          latest.Open,
		PreviousClose: prev.Close,
		DayHigh:       latest.High,
		DayLow:        latest.Low,
		Volume:        latest.Volume,
	}

	d.indicators = features.Snapshot(series.Closes(), uc.opts.RSIPeriod)
	beta := uc.beta(ctx, ticker)
	d.risk = uc.scorer.Assess(d.indicators.RSI, d.indicators.VolatilityPercent, beta)

	mean := features.MeanVolume(series.Bars)
	d.volumeAlert = float64(latest.Volume) > uc.opts.VolumeAlertMultiplier*mean
	if d.volumeAlert {
		uc.log.Debug("volume alert",
			logger.String("ticker", ticker),
			logger.Int64("volume", latest.Volume),
			logger.Float64("mean_volume", mean),
		)
	}

	return d, nil
}

// beta is best effort: any metadata failure falls back to the configured default.
func (uc *DashboardUseCase) beta(ctx context.Context, ticker string) float64 {
	mctx, cancel := context.WithTimeout(ctx, uc.opts.FetchTimeout)
	defer cancel()

	meta, err := uc.src.FetchMetadata(mctx, ticker)
	uc.metrics.RecordFetch("metadata", ticker, err)
	if err != nil {
		fields := []logger.Field{
			logger.String("ticker", ticker),
			logger.Float64("default_beta", uc.scorer.DefaultBeta()),
			logger.Error(err),
		}
		// only the first failure is logged at warn
		if uc.betaWarned.CompareAndSwap(false, true) {
			uc.log.Warn("beta unavailable, using default", fields...)
		} else {
			uc.log.Debug("beta unavailable, using default", fields...)
		}
		return uc.scorer.DefaultBeta()
	}
	return uc.scorer.BetaOrDefault(meta.Beta)
}

func (uc *DashboardUseCase) logFailure(ticker string, err error) {
	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		uc.log.Info("ticker not found", logger.String("ticker", ticker))
		return
	}
	uc.metrics.RecordError("dashboard_upstream")
	uc.log.Error("dashboard assembly failed",
		logger.String("ticker", ticker),
		logger.Error(err),
	)
}
