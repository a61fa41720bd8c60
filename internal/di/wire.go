//go:build wireinject
// +build wireinject

package di

import (
	"FinAgent/pkg/config"
	"FinAgent/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideRegisterer,
	ProvideKafkaProducer,
	ProvideLogger,
	ProvideMetrics,
	ProvideMarketData,
	ProvideCache,
)

var useCaseSet = wire.NewSet(
	ProvideScorer,
	ProvideMarketMovers,
	ProvideDashboard,
	ProvideNews,
	ProvideAgent,
	ProvideAnalyze,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		infraSet,
		useCaseSet,

		// HTTP
		ProvideEndpointMetrics,
		ProvideRouter,
		ProvideLimiter,

		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeUseCases wires the use cases without the HTTP server, for the CLI.
func InitializeUseCases(cfg *config.Config) (*UseCases, error) {
	wire.Build(
		infraSet,
		useCaseSet,
		wire.Struct(new(UseCases), "*"),
	)
	return &UseCases{}, nil
}
