//go:build wireinject
// +build wireinject

package di

import (
	"StructScan/pkg/config"
	"StructScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvidePublisher,

		// Repositories
		ProvideBarSource,
		ProvidePriceSource,

		// Use cases and surfaces
		ProvideScanUseCase,
		ProvideScanHandler,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
