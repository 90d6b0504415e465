package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"autotask-relay/internal/adapter/httpapi"
	"autotask-relay/internal/config"
	"autotask-relay/internal/domain/model"
	"autotask-relay/internal/domain/ports"
	"autotask-relay/internal/usecase"
)

const (
	shutdownTimeout = 5 * time.Second
	scheduleTimeout = 2 * time.Minute
)

// App hosts the autotask HTTP endpoint and the scheduled autotasks, and
// reloads both when the handlers file changes.
type App struct {
	cfg      *config.Config
	registry *usecase.Registry
	factory  *NotifierFactory
	server   *http.Server
	logger   ports.Logger
	slog     *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// New constructs an App instance.
func New(cfg *config.Config, registry *usecase.Registry, factory *NotifierFactory, api *httpapi.Server, logger ports.Logger, slogger *slog.Logger) *App {
	return &App{
		cfg:      cfg,
		registry: registry,
		factory:  factory,
		server: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
		slog:   slogger,
	}
}

// Run loads the handlers, starts the scheduler and HTTP server and blocks
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Reload(); err != nil {
		return err
	}

	if a.cfg.WatchHandlers {
		go func() {
			if err := config.Watch(ctx, a.slog, a.cfg.HandlersFile, a.Reload); err != nil {
				a.logger.Error(ctx, "handlers watch stopped", "error", err)
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "autotask endpoint listening", "addr", a.cfg.ListenAddr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			a.stopScheduler()
			return fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error(shutdownCtx, "http shutdown failed", "error", err)
	}
	a.stopScheduler()
	a.logger.Info(context.Background(), "autotask relay stopped")
	return nil
}

// Reload re-reads the handlers file, swaps the registry contents and
// restarts the scheduler with the new schedules. On error nothing changes.
func (a *App) Reload() error {
	handlers, err := config.LoadHandlers(a.cfg.HandlersFile, a.cfg.DefaultSecretName(), usecase.TemplateKinds())
	if err != nil {
		return err
	}
	notifiers, err := a.factory.Build(handlers)
	if err != nil {
		return err
	}

	scheduler := cron.New()
	for _, s := range handlers.Schedules {
		if _, err := scheduler.AddFunc(s.Cron, a.scheduledJob(s)); err != nil {
			return fmt.Errorf("schedule %q: %w", s.Name, err)
		}
	}

	a.registry.Replace(notifiers)

	a.mu.Lock()
	previous := a.cron
	a.cron = scheduler
	a.mu.Unlock()
	if previous != nil {
		previous.Stop()
	}
	scheduler.Start()

	a.logger.Info(context.Background(), "handlers loaded",
		"handlers", a.registry.Names(), "schedules", len(handlers.Schedules))
	return nil
}

func (a *App) scheduledJob(s config.Schedule) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), scheduleTimeout)
		defer cancel()
		if err := a.RunSchedule(ctx, s); err != nil {
			a.logger.Error(ctx, "scheduled autotask failed", "schedule", s.Name, "handler", s.Handler, "error", err)
		}
	}
}

// RunSchedule invokes the schedule's handler once with a synthetic alert.
func (a *App) RunSchedule(ctx context.Context, s config.Schedule) error {
	notifier, ok := a.registry.Get(s.Handler)
	if !ok {
		return fmt.Errorf("unknown handler %q", s.Handler)
	}

	metadata := make(map[string]any, len(s.Metadata)+1)
	for k, v := range s.Metadata {
		metadata[k] = v
	}
	metadata["schedule"] = s.Name

	secrets := make(map[string]string, len(a.cfg.Secrets))
	for k, v := range a.cfg.Secrets {
		secrets[k] = v
	}

	inv := &model.Invocation{
		Secrets: secrets,
		Request: &model.Request{Body: &model.AlertBody{
			Alert: &model.Alert{Metadata: metadata},
			Hash:  uuid.NewString(),
		}},
	}
	a.logger.Info(ctx, "running scheduled autotask", "schedule", s.Name, "handler", s.Handler)
	return notifier.Handle(ctx, inv)
}

func (a *App) stopScheduler() {
	a.mu.Lock()
	c := a.cron
	a.mu.Unlock()
	if c == nil {
		return
	}
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(shutdownTimeout):
	}
}
