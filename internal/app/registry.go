package app

import (
	"fmt"

	"autotask-relay/internal/adapter/explorer"
	"autotask-relay/internal/config"
	"autotask-relay/internal/domain/ports"
	"autotask-relay/internal/retry"
	"autotask-relay/internal/usecase"
)

// NotifierFactory turns a handlers file into notifiers sharing one transport
// and retry policy.
type NotifierFactory struct {
	deliverer ports.Deliverer
	logger    ports.Logger
	policy    retry.Policy
}

// NewNotifierFactory constructs a NotifierFactory.
func NewNotifierFactory(deliverer ports.Deliverer, logger ports.Logger, policy retry.Policy) *NotifierFactory {
	return &NotifierFactory{
		deliverer: deliverer,
		logger:    logger,
		policy:    policy,
	}
}

// Build creates one notifier per configured handler.
func (f *NotifierFactory) Build(h *config.Handlers) ([]*usecase.AlertNotifier, error) {
	resolver := explorer.New(h.Explorers)

	notifiers := make([]*usecase.AlertNotifier, 0, len(h.Handlers))
	for _, hd := range h.Handlers {
		tmpl, ok := usecase.LookupTemplate(hd.Template)
		if !ok {
			return nil, fmt.Errorf("handler %q: unknown template %q", hd.Name, hd.Template)
		}
		notifiers = append(notifiers, usecase.NewAlertNotifier(usecase.NotifierConfig{
			Name:               hd.Name,
			SecretName:         hd.SecretName,
			Template:           tmpl,
			LinkResolver:       resolver,
			FallbackLinkFormat: hd.FallbackLink,
			Retry:              f.policy,
		}, f.deliverer, f.logger))
	}
	return notifiers, nil
}
