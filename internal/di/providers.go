package di

import (
	"context"
	"fmt"
	"io"

	domrepo "FinAgent/internal/domain/repository"
	domsvc "FinAgent/internal/domain/service"
	"FinAgent/internal/handler/api"
	"FinAgent/internal/service/cache"
	imetrics "FinAgent/internal/service/metrics"
	"FinAgent/internal/service/news"
	"FinAgent/internal/service/ratelimit"
	"FinAgent/internal/service/yahoo"
	"FinAgent/internal/services/agent"
	"FinAgent/internal/services/risk"
	"FinAgent/internal/usecase"
	"FinAgent/pkg/config"
	"FinAgent/pkg/http/middleware"
	pkgkafka "FinAgent/pkg/kafka"
	"FinAgent/pkg/logger"
	"FinAgent/pkg/metrics"
	"FinAgent/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// UseCases bundles the use cases for entrypoints that run them without the HTTP server.
type UseCases struct {
	Log       *logger.Logger
	Dashboard *usecase.DashboardUseCase
	Movers    *usecase.MarketMoversUseCase
	News      *usecase.NewsUseCase
	Analyze   *usecase.AnalyzeUseCase
}

// ProvideRegisterer returns the process-wide Prometheus registerer.
func ProvideRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

// ProvideKafkaProducer creates the log-shipping producer. It is nil when shipping is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg prometheus.Registerer) (*pkgkafka.Producer, error) {
	if !cfg.Logging.Ship.Enabled || len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger creates the application logger and attaches the error-log collector when a producer exists.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil {
		l.AddCollector(&logger.CollectionConfig{
			Service:        "finagent",
			TimeInterval:   cfg.Logging.Ship.Interval,
			CountThreshold: cfg.Logging.Ship.Threshold,
			Topic:          cfg.Logging.Ship.Topic,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg prometheus.Registerer) domrepo.Metrics {
	return metrics.NewWithRegistry(reg)
}

func ProvideEndpointMetrics(reg prometheus.Registerer) *imetrics.Endpoints {
	return imetrics.NewEndpoints(reg)
}

// ProvideMarketData creates the Yahoo chart/quoteSummary client.
func ProvideMarketData(cfg *config.Config, l *logger.Logger) domrepo.MarketDataSource {
	return yahoo.NewClient(cfg, l)
}

// ProvideCache returns Redis when enabled and reachable, otherwise an in-memory cache.
func ProvideCache(cfg *config.Config, l *logger.Logger) domrepo.BytesCache {
	return cache.New(context.Background(), cfg, l)
}

func ProvideScorer(cfg *config.Config) *risk.Scorer {
	return risk.NewScorerFromConfig(cfg)
}

func ProvideMarketMovers(cfg *config.Config, src domrepo.MarketDataSource, m domrepo.Metrics, l *logger.Logger) *usecase.MarketMoversUseCase {
	return usecase.NewMarketMoversUseCase(src, usecase.NewBaskets(cfg), usecase.MoversOptions{
		Window:         domrepo.NormalizeWindow(cfg.Dashboard.BasketWindow, domrepo.Window5d),
		FetchTimeout:   cfg.MarketData.FetchTimeout,
		MaxConcurrency: cfg.MarketData.MaxConcurrency,
		Limit:          cfg.Dashboard.MoversLimit,
	}, m, l)
}

func ProvideDashboard(
	cfg *config.Config,
	src domrepo.MarketDataSource,
	movers *usecase.MarketMoversUseCase,
	scorer *risk.Scorer,
	m domrepo.Metrics,
	l *logger.Logger,
) *usecase.DashboardUseCase {
	return usecase.NewDashboardUseCase(src, movers, scorer, usecase.DashboardOptionsFromConfig(cfg), m, l)
}

// ProvideNews wires NewsAPI for INDIA and MarketAux for US/GLOBAL behind the response cache.
func ProvideNews(cfg *config.Config, c domrepo.BytesCache, l *logger.Logger) *usecase.NewsUseCase {
	n := cfg.News
	return usecase.NewNewsUseCase(
		news.NewNewsAPIClient(n.NewsAPIURL, n.NewsAPIKey, n.Timeout),
		news.NewMarketAuxClient(n.MarketAuxURL, n.MarketAuxKey, n.Timeout),
		c, n.CacheTTL, l,
	)
}

// ProvideAgent gives the model API client tool access to the market data source.
func ProvideAgent(cfg *config.Config, src domrepo.MarketDataSource, l *logger.Logger) domsvc.QueryAgent {
	return agent.NewClient(cfg, src, l)
}

func ProvideAnalyze(a domsvc.QueryAgent, l *logger.Logger) *usecase.AnalyzeUseCase {
	return usecase.NewAnalyzeUseCase(a, l)
}

// ProvideRouter builds the HTTP handlers.
func ProvideRouter(
	cfg *config.Config,
	l *logger.Logger,
	m *imetrics.Endpoints,
	dashboard *usecase.DashboardUseCase,
	newsUC *usecase.NewsUseCase,
	analyze *usecase.AnalyzeUseCase,
) *api.Router {
	return api.NewRouter(
		api.NewDashboardHandler(l, m, dashboard),
		api.NewNewsHandler(l, m, newsUC),
		api.NewAnalyzeHandler(l, m, analyze),
		api.NewStreamHandler(l, m, dashboard, cfg.Dashboard.StreamInterval, cfg.Dashboard.StreamMinInterval),
	)
}

// ProvideLimiter returns nil when rate limiting is disabled.
func ProvideLimiter(cfg *config.Config) middleware.Allower {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideApp creates the application server and registers resources closed on shutdown.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	router *api.Router,
	limiter middleware.Allower,
	c domrepo.BytesCache,
	producer *pkgkafka.Producer,
) *server.App {
	app := server.New(cfg, l, router, limiter)
	if closer, ok := c.(io.Closer); ok {
		app.OnShutdown("cache", closer)
	}
	if producer != nil {
		app.OnShutdown("kafka producer", producer)
	}
	return app
}
