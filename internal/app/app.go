package app

import (
	"io"
	"log/slog"

	"github.com/vk/flakego/internal/manifest"
	"github.com/vk/flakego/internal/resolver"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   manifest.Loader
	resolver resolver.Resolver
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger: evaluation
// results go to outW, logs to logW. res may be nil, in which case Run
// wires the default fetcher stack (path + https, cached); tests inject
// fixture resolvers through it.
func NewApp(outW, logW io.Writer, config *Config, loader manifest.Loader, res resolver.Resolver) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   config,
		loader:   loader,
		resolver: res,
	}
}

// Logger returns the application's logger. This is primarily for testing.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
