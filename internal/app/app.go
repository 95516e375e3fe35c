package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/dag"
	"github.com/vk/taskgrid/internal/fsutil"
	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/metrics"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/task"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	handlers *handlers.Handlers
	registry *registry.Registry
	metrics  *metrics.Recorder
}

// NewApp is the constructor for the main application. It returns an App with
// its own isolated logger, handlers, and registry. When no modules are given
// the core modules are registered.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...handlers.Module) *App {
	out := &lockedWriter{w: outW}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, out)
	logger.Debug("Logger configured successfully.")

	h := handlers.New()
	if len(modules) == 0 {
		modules = CoreModules()
	}
	for _, mod := range modules {
		mod.Register(h)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "kinds", h.Kinds())

	return &App{
		outW:     out,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		handlers: h,
		registry: registry.New(),
		metrics:  metrics.New(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Load reads the task files, builds an action for every task, and registers
// the tasks. The task graph is validated before Load returns, so a dangling
// prerequisite or a cycle fails here rather than halfway through a run.
func (a *App) Load(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger

	env := &config.Environment{
		ActionKinds: a.handlers.Kinds(),
		Namespaces:  a.handlers.Namespaces(),
		Variables:   a.config.Variables,
	}
	model, err := a.loader.Load(ctx, env, a.config.TaskFiles...)
	if err != nil {
		return fmt.Errorf("failed to load task files: %w", err)
	}
	logger.Debug("Task files loaded.", "files", model.Files, "tasks", len(model.Tasks))

	// Registered first so that a task file can replace it.
	a.registry.RegisterTask(a.helpTask())

	for _, t := range model.Tasks {
		action, err := a.buildAction(ctx, model, t)
		if err != nil {
			return err
		}
		a.registry.RegisterTask(&task.Task{
			Name:          t.Name,
			Description:   t.Description,
			Prerequisites: t.DependsOn,
			Action:        action,
		})
	}

	if err := dag.Validate(a.registry); err != nil {
		return fmt.Errorf("invalid task graph: %w", err)
	}
	logger.Debug("Task graph validated.", "tasks", a.registry.Len())
	return nil
}

// buildAction turns the action blocks of a task into one sequential action,
// guarded by the up-to-date check when the task declares its files.
func (a *App) buildAction(ctx context.Context, model *config.Model, t *config.Task) (task.Action, error) {
	actions := make([]task.Action, 0, len(t.Actions))
	for _, block := range t.Actions {
		action, err := a.handlers.Build(ctx, block.Kind, &handlers.Spec{
			Task:        t.Name,
			Body:        block.Body,
			EvalContext: model.EvalContext,
			BaseDir:     model.BaseDir,
			Out:         a.outW,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", block.DeclRange, err)
		}
		actions = append(actions, action)
	}

	action := task.Sequence(actions...)
	if action == nil || a.config.Force || len(t.Sources) == 0 || len(t.Generates) == 0 {
		return action, nil
	}
	return skipIfUpToDate(model.BaseDir, t.Sources, t.Generates, action), nil
}

// skipIfUpToDate wraps action so that it reports task.ErrUpToDate instead of
// running when every generated file is newer than every source.
func skipIfUpToDate(baseDir string, sources, generates []string, action task.Action) task.Action {
	return task.ActionFunc(func(ctx context.Context) error {
		fresh, err := fsutil.UpToDate(baseDir, sources, generates)
		if err != nil {
			return fmt.Errorf("up-to-date check: %w", err)
		}
		if fresh {
			return task.ErrUpToDate
		}
		return action.Start(ctx).Get()
	})
}
