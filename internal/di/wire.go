//go:build wireinject

package di

import (
	"github.com/google/wire"

	"autotask-relay/internal/adapter/httpapi"
	"autotask-relay/internal/adapter/logging"
	"autotask-relay/internal/app"
	"autotask-relay/internal/config"
	"autotask-relay/internal/domain/ports"
	"autotask-relay/internal/usecase"
)

// InitializeApp wires the application components together.
func InitializeApp() (*app.App, error) {
	wire.Build(
		config.Load,
		provideSlogLogger,
		logging.New,
		wire.Bind(new(ports.Logger), new(*logging.SLogger)),
		provideDeliverer,
		provideRetryPolicy,
		app.NewNotifierFactory,
		provideRegistry,
		wire.Bind(new(httpapi.NotifierLookup), new(*usecase.Registry)),
		provideDefaultSecrets,
		httpapi.New,
		app.New,
	)
	return nil, nil
}
