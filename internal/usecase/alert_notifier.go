package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autotask-relay/internal/domain/model"
	"autotask-relay/internal/domain/ports"
	"autotask-relay/internal/retry"
)

// HashPlaceholder is replaced with the alert hash in a fallback link format.
const HashPlaceholder = "{hash}"

// NotifierConfig describes one deployment's notifier: where the webhook URL
// lives, how messages look and how links are built.
type NotifierConfig struct {
	Name               string
	SecretName         string
	Template           Template
	LinkResolver       ports.LinkResolver
	FallbackLinkFormat string
	Retry              retry.Policy
}

// AlertNotifier validates an invocation, formats its alert and delivers it
// to the webhook named by a secret.
type AlertNotifier struct {
	cfg       NotifierConfig
	deliverer ports.Deliverer
	logger    ports.Logger
}

var _ ports.Notifier = (*AlertNotifier)(nil)

// NewAlertNotifier constructs an AlertNotifier.
func NewAlertNotifier(cfg NotifierConfig, deliverer ports.Deliverer, logger ports.Logger) *AlertNotifier {
	if cfg.Template.Render == nil {
		cfg.Template = templates["generic"]
	}
	return &AlertNotifier{
		cfg:       cfg,
		deliverer: deliverer,
		logger:    logger,
	}
}

// Name returns the handler name the notifier was registered under.
func (n *AlertNotifier) Name() string {
	return n.cfg.Name
}

// Handle processes a single alert. Every validation failure is returned
// before the webhook is contacted.
func (n *AlertNotifier) Handle(ctx context.Context, inv *model.Invocation) error {
	destination, err := n.destination(inv)
	if err != nil {
		return err
	}
	return n.handleEvent(ctx, inv.Secrets, destination, inv.Body())
}

// HandleEvents processes every event of a batch body in order. Envelope
// errors (payload, secrets, destination) fail the whole call; per-event
// errors are reported in the matching Result and do not stop later events.
// A body without events is handled as a batch of one.
func (n *AlertNotifier) HandleEvents(ctx context.Context, inv *model.Invocation) ([]model.Result, error) {
	destination, err := n.destination(inv)
	if err != nil {
		return nil, err
	}

	body := inv.Body()
	events := []*model.AlertBody{body}
	if body != nil && len(body.Events) > 0 {
		events = body.Events
	}

	results := make([]model.Result, 0, len(events))
	for i, event := range events {
		res := model.Result{Index: i}
		if event != nil {
			res.Hash = event.Hash
		}
		res.Err = n.handleEvent(ctx, inv.Secrets, destination, event)
		if res.Err != nil {
			n.logger.Error(ctx, "batch event failed", "handler", n.cfg.Name, "index", i, "error", res.Err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Render builds the message for body without delivering it.
func (n *AlertNotifier) Render(secrets map[string]string, body *model.AlertBody) (string, error) {
	if body == nil || body.Alert == nil || body.Alert.Metadata == nil {
		return "", fmt.Errorf("%w: alert metadata is required", model.ErrInvalidInput)
	}
	if key, missing := missingField(body.Alert.Metadata, n.cfg.Template.Required); missing {
		return "", fmt.Errorf("%w: alert metadata field %q is required", model.ErrInvalidInput, key)
	}

	return n.cfg.Template.Render(MessageFields{
		Metadata: body.Alert.Metadata,
		Hash:     body.Hash,
		Link:     n.link(secrets, body),
	}), nil
}

func (n *AlertNotifier) destination(inv *model.Invocation) (string, error) {
	if inv == nil {
		return "", fmt.Errorf("%w: payload is required", model.ErrInvalidInput)
	}
	if inv.Secrets == nil {
		return "", fmt.Errorf("%w: secrets are required", model.ErrInvalidInput)
	}
	destination, ok := inv.Secrets[n.cfg.SecretName]
	if !ok || strings.TrimSpace(destination) == "" {
		return "", fmt.Errorf("%w: %s", model.ErrMissingSecret, n.cfg.SecretName)
	}
	if err := validateDestination(destination); err != nil {
		return "", err
	}
	return destination, nil
}

func (n *AlertNotifier) handleEvent(ctx context.Context, secrets map[string]string, destination string, body *model.AlertBody) error {
	content, err := n.Render(secrets, body)
	if err != nil {
		return err
	}

	req := model.DeliveryRequest{DestinationURL: destination, MessageBody: content}
	attempts := 0
	policy := n.cfg.Retry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		n.logger.Warn(ctx, "delivery failed, retrying",
			"handler", n.cfg.Name, "attempt", attempt, "retry_in", delay, "error", err)
		if n.cfg.Retry.OnRetry != nil {
			n.cfg.Retry.OnRetry(attempt, delay, err)
		}
	}

	err = retry.Do(ctx, policy, func(ctx context.Context) error {
		attempts++
		return n.deliverer.Deliver(ctx, req)
	})
	if err != nil {
		n.logger.Error(ctx, "delivery failed", "handler", n.cfg.Name, "hash", body.Hash, "attempts", attempts, "error", err)
		return fmt.Errorf("%w: %w", model.ErrDeliveryFailure, err)
	}

	n.logger.Info(ctx, "alert notification delivered", "handler", n.cfg.Name, "hash", body.Hash, "attempts", attempts)
	return nil
}

func (n *AlertNotifier) link(secrets map[string]string, body *model.AlertBody) string {
	if n.cfg.LinkResolver != nil {
		if link, ok := n.cfg.LinkResolver.Resolve(secrets, body.Source); ok {
			return link
		}
	}
	if n.cfg.FallbackLinkFormat == "" || body.Hash == "" {
		return ""
	}
	return strings.ReplaceAll(n.cfg.FallbackLinkFormat, HashPlaceholder, body.Hash)
}
