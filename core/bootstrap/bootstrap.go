// Package bootstrap runs the start-up steps shared by every bot: logger
// initialisation followed by opening the application's storage.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	coreconfig "github.com/m3rciful/applybot/core/config"
	"github.com/m3rciful/applybot/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options[S any] struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	// OpenStorage builds the storage handed to the application.
	OpenStorage func(ctx context.Context, cfg *coreconfig.Config) (S, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result[S any] struct {
	Storage S
}

// Run initializes the logger and opens storage.
func Run[S any](ctx context.Context, opts Options[S]) (*Result[S], error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if opts.OpenStorage == nil {
		return nil, fmt.Errorf("bootstrap: OpenStorage is required")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	storage, err := opts.OpenStorage(ctx, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: storage initialization failed: %w", err)
	}
	logger.Info(ctx, "app", "storage.ready", slog.String("kind", fmt.Sprintf("%T", storage)))

	return &Result[S]{Storage: storage}, nil
}
