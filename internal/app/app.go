package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/specialistvlad/pioconf/internal/buildenv"
	"github.com/specialistvlad/pioconf/internal/hook"
)

// sourceLister is implemented by modules whose action depends on files that
// are worth watching.
type sourceLister interface {
	Sources(ctx context.Context, env buildenv.Environment) ([]string, error)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	hooks   *hook.Registry
	modules []hook.Module
	config  *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and hook
// registry. Without explicit modules the compiled-in ones are used.
func NewApp(outW io.Writer, cfg *Config, modules ...hook.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules(outW)
	}

	reg := hook.New()
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All modules registered.", "count", len(modules))

	if err := reg.Validate(); err != nil {
		// A broken registration is a programmer error, so we panic.
		panic(err)
	}

	return &App{
		outW:    outW,
		logger:  logger,
		hooks:   reg,
		modules: modules,
		config:  cfg,
	}
}

// Hooks returns the application's hook registry. This is primarily for testing.
func (a *App) Hooks() *hook.Registry {
	return a.hooks
}
