// Package app assembles a working registry from the built-in model packages
// and any extra manifest paths, and serves the introspection commands.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/modelspec/internal/config"
	"github.com/vk/modelspec/internal/ctxlog"
	"github.com/vk/modelspec/internal/dispatch"
	"github.com/vk/modelspec/internal/registry"
)

// Config holds everything an App instance needs to run.
type Config struct {
	// ManifestPaths lists extra manifest files or directories loaded after
	// the built-in model definitions.
	ManifestPaths []string
	LogFormat     string
	LogLevel      string
	Output        string
	Verbosity     int
	Catch         bool
}

// App encapsulates the application's registry, logger, and control
// configuration.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	control  dispatch.Control
}

// New builds a fully initialized App: it registers every module's Go
// functions, loads the built-in and extra manifests, applies them to a
// fresh registry, and validates manifest/Go parity. Registration errors are
// programming errors in model-definition code and fail startup.
func New(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules()
	}

	reg := registry.New()
	sources := make(map[string][]byte)
	for _, mod := range modules {
		if err := mod.Register(reg); err != nil {
			return nil, fmt.Errorf("registering module functions: %w", err)
		}
		name, src := mod.Manifest()
		if len(src) > 0 {
			sources[name] = src
		}
	}
	logger.Debug("All model modules registered.", "count", len(modules))

	builtin, err := loader.LoadSources(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("loading built-in manifests: %w", err)
	}
	extra := &config.Model{}
	if len(cfg.ManifestPaths) > 0 {
		extra, err = loader.Load(ctx, cfg.ManifestPaths...)
		if err != nil {
			return nil, fmt.Errorf("loading manifests: %w", err)
		}
	}

	if err := reg.ApplyDefinitions(ctx, config.Merge(builtin, extra)); err != nil {
		return nil, err
	}
	logger.Debug("Model definitions applied to registry.")

	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		control:  dispatch.Control{Verbosity: cfg.Verbosity, Catch: cfg.Catch},
	}, nil
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Control returns the dispatcher configuration built from the app config.
func (a *App) Control() dispatch.Control {
	return a.control
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
