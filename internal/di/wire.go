//go:build wireinject
// +build wireinject

package di

import (
	"ChainPulse/pkg/config"
	"ChainPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideHTTPClient,
		ProvideResponseCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideChartCache,
		ProvideRedisClient,

		// Repositories
		ProvideHistoryStore,
		ProvideArchive,
		ProvidePublisher,

		// Series plumbing
		ProvideCatalog,
		ProvideHub,
		ProvideChartSink,

		// Use cases
		ProvideProcessor,
		ProvideChartsUseCase,
		ProvideCollector,
		ProvidePointsHandler,
		ProvideRefreshQueue,

		// HTTP
		ProvideChartsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
