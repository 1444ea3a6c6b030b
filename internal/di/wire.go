//go:build wireinject
// +build wireinject

package di

import (
	"FinCast/pkg/config"
	"FinCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Data source, model and sinks
		ProvideHistorySource,
		ProvidePredictor,
		ProvideForecastSink,
		ProvideLimiter,

		// Use cases
		ProvideForecastPipeline,

		// HTTP
		ProvideForecastHandler,
		ProvideHealthHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
