//go:build wireinject
// +build wireinject

package di

import (
	"NarrativeRadar/pkg/config"
	"NarrativeRadar/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient stack
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideRedisQueue,

		// Seeds and adapters
		ProvideSeeds,
		ProvideRegistry,
		ProvideSource,

		// Repositories
		ProvideSnapshotStore,
		ProvidePublisher,

		// Use cases and jobs
		ProvideRefresher,
		ProvideHeatmap,
		ProvideTracker,
		ProvideRefreshJob,
		ProvideDispatcher,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
