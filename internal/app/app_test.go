package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"autotask-relay/internal/adapter/discord"
	"autotask-relay/internal/adapter/httpapi"
	"autotask-relay/internal/adapter/logging"
	"autotask-relay/internal/config"
	"autotask-relay/internal/retry"
	"autotask-relay/internal/usecase"
)

type capture struct {
	mu       sync.Mutex
	contents []string
}

func (c *capture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Content string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		c.mu.Lock()
		c.contents = append(c.contents, body.Content)
		c.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (c *capture) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.contents...)
}

func newTestApp(t *testing.T, handlersYAML string, secrets map[string]string) (*App, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "handlers.yaml")
	if err := os.WriteFile(path, []byte(handlersYAML), 0o600); err != nil {
		t.Fatalf("write handlers: %v", err)
	}

	cfg := &config.Config{
		ListenAddr:   "127.0.0.1:0",
		HandlersFile: path,
		StackName:    "test",
		Secrets:      secrets,
	}
	logger := logging.Nop()
	registry := usecase.NewRegistry()
	factory := NewNotifierFactory(discord.NewWebhook(time.Second, logger), logger, retry.Policy{
		MaxRetries:  retry.DefaultMaxRetries,
		ShouldRetry: discord.IsRetryable,
		Backoff:     retry.Constant(0),
	})
	api := httpapi.New(registry, secrets, logger)
	a := New(cfg, registry, factory, api, logger, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(a.stopScheduler)
	return a, path
}

func TestReloadBuildsRegistry(t *testing.T) {
	a, path := newTestApp(t, `handlers:
  - name: liquidations
    template: liquidation
  - name: ops
`, nil)

	if err := a.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if names := a.registry.Names(); strings.Join(names, ",") != "liquidations,ops" {
		t.Fatalf("names: got %v", names)
	}

	// A broken file keeps the previous handlers.
	if err := os.WriteFile(path, []byte("handlers:\n  - name: x\n    template: nope\n"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := a.Reload(); err == nil {
		t.Fatal("Reload should fail on an unknown template")
	}
	if _, ok := a.registry.Get("liquidations"); !ok {
		t.Fatal("failed reload must not drop existing handlers")
	}
}

func TestRunScheduleDeliversWithEnvSecrets(t *testing.T) {
	c := &capture{}
	srv := c.server(t)

	a, _ := newTestApp(t, `fallback_link: "https://monitor.example/alerts/{hash}"
handlers:
  - name: heartbeat
    template: threshold
schedules:
  - name: hourly-balance
    handler: heartbeat
    cron: "@hourly"
    metadata:
      account: "0x3333333333333333333333333333333333333333"
      threshold: 250
`, map[string]string{"test_discordWebhook": srv.URL})

	if err := a.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	handlers, err := config.LoadHandlers(a.cfg.HandlersFile, a.cfg.DefaultSecretName(), usecase.TemplateKinds())
	if err != nil {
		t.Fatalf("LoadHandlers: %v", err)
	}

	if err := a.RunSchedule(context.Background(), handlers.Schedules[0]); err != nil {
		t.Fatalf("RunSchedule: %v", err)
	}
	got := c.all()
	if len(got) != 1 {
		t.Fatalf("deliveries: got %d, want 1", len(got))
	}
	if !strings.HasPrefix(got[0], "⚠️ **Threshold crossed**: account 0x3333 reached 250. https://monitor.example/alerts/") {
		t.Errorf("content: got %q", got[0])
	}
}

func TestRunScheduleUnknownHandler(t *testing.T) {
	a, _ := newTestApp(t, "handlers: []\n", nil)
	if err := a.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := a.RunSchedule(context.Background(), config.Schedule{Name: "x", Handler: "missing"}); err == nil {
		t.Fatal("expected error for unknown handler")
	}
}

func TestRunServesUntilCancelled(t *testing.T) {
	a, _ := newTestApp(t, "handlers:\n  - name: ops\n", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunFailsOnBadHandlersFile(t *testing.T) {
	a, _ := newTestApp(t, "handlers: [", nil)
	if err := a.Run(context.Background()); err == nil {
		t.Fatal("Run should fail when the handlers file is invalid")
	}
}
