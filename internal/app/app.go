package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"github.com/specialistvlad/fragmentgrid/internal/engine"
	"github.com/specialistvlad/fragmentgrid/internal/metrics"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
	"github.com/specialistvlad/fragmentgrid/internal/task"
	"github.com/specialistvlad/fragmentgrid/modules/http_client"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	model      *config.Model
	metrics    *prometheus.Registry
	provider   *action.Provider
	fragments  *engine.FragmentsEngine
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// metrics registry. Startup failures panic; the entrypoint recovers them.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load all configuration into the format-agnostic model first.
	model, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.", "actions", len(model.Actions), "tasks", len(model.Tasks))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.ValidateRegistry(ctx, model); err != nil {
		// A mismatch between code and config is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	promRegistry := prometheus.NewRegistry()
	recorder, err := metrics.NewPrometheusRecorder(promRegistry)
	if err != nil {
		panic(fmt.Errorf("failed to set up metrics: %w", err))
	}

	provider := action.NewProvider(model.Actions, reg, action.Runtime{
		Caches:     reg,
		Metrics:    recorder,
		HTTPClient: http_client.NewClient(0),
	})
	compiler := task.NewCompiler(model.Tasks, provider)
	eng := engine.New(engine.WithRecorder(recorder))

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		model:     model,
		metrics:   promRegistry,
		provider:  provider,
		fragments: engine.NewFragmentsEngine(compiler, eng, cfg.WorkerCount),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
