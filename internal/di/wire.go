//go:build wireinject
// +build wireinject

package di

import (
	"TradeGate/pkg/config"
	"TradeGate/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideSchema,

		// Feature pipeline and risk services
		ProvideFeatureEngine,
		ProvideEventSource,
		ProvideNewsEngine,
		ProvideNewsScheduler,
		ProvideSafetyMonitor,

		// Policy artifacts
		ProvidePolicy,
		ProvideScaler,
		ProvideUpdater,

		// Persistence and shared state
		ProvideReportStore,
		ProvideBotState,
		ProvideCooldown,

		// Use case and HTTP surface
		ProvideDecisionEngine,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
