package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	ListenAddr     string
	HandlersFile   string
	StackName      string
	RequestTimeout time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	WatchHandlers  bool
	LogLevel       string
	// Secrets are merged into every invocation; payload secrets take precedence.
	Secrets map[string]string
}

// SecretEnvPrefix marks environment variables that become default secrets:
// SECRET_prod_discordWebhook=https://... yields the secret "prod_discordWebhook".
const SecretEnvPrefix = "SECRET_"

const (
	defaultListenAddr   = ":8080"
	defaultHandlersFile = "handlers.yaml"
	defaultStackName    = "dev"
	defaultTimeout      = 10 * time.Second
	defaultMaxRetries   = 3
	defaultBackoffBase  = 100 * time.Millisecond
	defaultBackoffMax   = 10 * time.Second
	defaultLogLevel     = "info"
)

// Load builds a Config from environment variables with sane defaults. A .env
// file in the working directory is read first when present; variables already
// set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		ListenAddr:     getenvDefault("LISTEN_ADDR", defaultListenAddr),
		HandlersFile:   getenvDefault("HANDLERS_FILE", defaultHandlersFile),
		StackName:      getenvDefault("STACK_NAME", defaultStackName),
		RequestTimeout: parseDurationDefault("REQUEST_TIMEOUT", defaultTimeout),
		MaxRetries:     parseIntDefault("MAX_RETRIES", defaultMaxRetries),
		BackoffBase:    parseDurationDefault("BACKOFF_BASE", defaultBackoffBase),
		BackoffMax:     parseDurationDefault("BACKOFF_MAX", defaultBackoffMax),
		WatchHandlers:  parseBoolDefault("WATCH_HANDLERS", true),
		LogLevel:       strings.ToLower(getenvDefault("LOG_LEVEL", defaultLogLevel)),
		Secrets:        secretsFromEnv(os.Environ()),
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("MAX_RETRIES must not be negative")
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.BackoffMax < cfg.BackoffBase {
		cfg.BackoffMax = cfg.BackoffBase
	}

	return cfg, nil
}

// DefaultSecretName is the secret holding a stack's webhook URL when a
// handler does not name one.
func (c *Config) DefaultSecretName() string {
	return c.StackName + "_discordWebhook"
}

func secretsFromEnv(environ []string) map[string]string {
	secrets := make(map[string]string)
	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, SecretEnvPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, SecretEnvPrefix)
		if name == "" || val == "" {
			continue
		}
		secrets[name] = val
	}
	return secrets
}

func getenvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseIntDefault(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func parseBoolDefault(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func parseDurationDefault(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
