package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Handlers is the parsed handlers file: which notifiers exist and which
// of them run on a schedule.
type Handlers struct {
	// Explorers maps chain IDs to block-explorer base URLs, on top of the
	// built-in defaults.
	Explorers map[string]string `yaml:"explorers"`

	// FallbackLink is used when a handler sets none. "{hash}" is replaced
	// with the alert hash.
	FallbackLink string `yaml:"fallback_link"`

	Handlers  []Handler  `yaml:"handlers"`
	Schedules []Schedule `yaml:"schedules"`
}

// Handler defines one named notifier.
type Handler struct {
	// Name is the path segment the notifier is reachable under.
	Name string `yaml:"name"`

	// SecretName is the secret holding the webhook URL.
	// Defaults to "<stack>_discordWebhook".
	SecretName string `yaml:"secret_name"`

	// Template is one of: liquidation | threshold | governance | generic.
	Template string `yaml:"template"`

	FallbackLink string `yaml:"fallback_link"`
}

// Schedule runs a handler on a cron expression with fixed alert metadata.
type Schedule struct {
	Name     string         `yaml:"name"`
	Cron     string         `yaml:"cron"`
	Handler  string         `yaml:"handler"`
	Metadata map[string]any `yaml:"metadata"`
}

// DefaultTemplate is used by handlers that do not name a template.
const DefaultTemplate = "generic"

// LoadHandlers reads and validates the handlers file at path. secretName
// fills in handlers without one; templates lists the accepted template kinds.
func LoadHandlers(path, secretName string, templates []string) (*Handlers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read handlers file: %w", err)
	}

	h := &Handlers{}
	if err := yaml.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	h.applyDefaults(secretName)
	if err := h.validate(templates); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Handlers) applyDefaults(secretName string) {
	for i := range h.Handlers {
		hd := &h.Handlers[i]
		if hd.SecretName == "" {
			hd.SecretName = secretName
		}
		if hd.Template == "" {
			hd.Template = DefaultTemplate
		}
		if hd.FallbackLink == "" {
			hd.FallbackLink = h.FallbackLink
		}
	}
	for i := range h.Schedules {
		if h.Schedules[i].Name == "" {
			h.Schedules[i].Name = h.Schedules[i].Handler
		}
	}
}

func (h *Handlers) validate(templates []string) error {
	known := make(map[string]bool, len(templates))
	for _, t := range templates {
		known[t] = true
	}

	names := make(map[string]bool, len(h.Handlers))
	for i, hd := range h.Handlers {
		if strings.TrimSpace(hd.Name) == "" {
			return fmt.Errorf("config: handlers[%d]: name is required", i)
		}
		if strings.ContainsAny(hd.Name, "/ ") {
			return fmt.Errorf("config: handler %q: name must not contain '/' or spaces", hd.Name)
		}
		if names[hd.Name] {
			return fmt.Errorf("config: handler %q defined twice", hd.Name)
		}
		names[hd.Name] = true
		if hd.SecretName == "" {
			return fmt.Errorf("config: handler %q: secret_name is required", hd.Name)
		}
		if len(known) > 0 && !known[hd.Template] {
			return fmt.Errorf("config: handler %q: unknown template %q (want one of %s)",
				hd.Name, hd.Template, strings.Join(templates, ", "))
		}
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for i, s := range h.Schedules {
		if !names[s.Handler] {
			return fmt.Errorf("config: schedules[%d]: unknown handler %q", i, s.Handler)
		}
		if _, err := parser.Parse(s.Cron); err != nil {
			return fmt.Errorf("config: schedule %q: invalid cron %q: %w", s.Name, s.Cron, err)
		}
	}
	return nil
}
