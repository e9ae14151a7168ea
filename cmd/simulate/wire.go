//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/duskborne/internal/config"
)

func initializeApp(ctx context.Context, cfg config.Config) (*App, func(), error) {
	wire.Build(AppSet)
	return nil, nil, nil
}
