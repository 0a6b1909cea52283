//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/statengine/internal/config"
)

func initializeApp(ctx context.Context, cfg *config.Config, opts RunOptions) (*App, func(), error) {
	wire.Build(
		provideLogger,
		provideContent,
		provideScripting,
		provideEvaluator,
		provideStores,
		provideGame,
		provideProcessor,
		provideLoop,
		provideLifecycle,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

func initializeChecker(cfg *config.Config) (*Checker, func(), error) {
	wire.Build(
		provideLogger,
		provideContent,
		provideScripting,
		wire.Struct(new(Checker), "*"),
	)
	return nil, nil, nil
}

func initializeStores(ctx context.Context, cfg *config.Config) (*Stores, func(), error) {
	wire.Build(
		provideLogger,
		provideStores,
	)
	return nil, nil, nil
}
