package di

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"autotask-relay/internal/adapter/discord"
	"autotask-relay/internal/config"
	"autotask-relay/internal/domain/ports"
	"autotask-relay/internal/retry"
	"autotask-relay/internal/usecase"
)

func provideSlogLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

func provideDeliverer(cfg *config.Config, logger ports.Logger) ports.Deliverer {
	return discord.NewWebhook(cfg.RequestTimeout, logger)
}

func provideRetryPolicy(cfg *config.Config) retry.Policy {
	return retry.Policy{
		MaxRetries:  cfg.MaxRetries,
		ShouldRetry: discord.IsRetryable,
		Backoff:     retry.Exponential(cfg.BackoffBase, cfg.BackoffMax),
	}
}

func provideRegistry() *usecase.Registry {
	return usecase.NewRegistry()
}

func provideDefaultSecrets(cfg *config.Config) map[string]string {
	return cfg.Secrets
}
