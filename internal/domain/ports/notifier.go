package ports

import (
	"context"

	"autotask-relay/internal/domain/model"
)

// Notifier handles an autotask invocation by notifying a downstream channel.
type Notifier interface {
	Handle(ctx context.Context, inv *model.Invocation) error
	HandleEvents(ctx context.Context, inv *model.Invocation) ([]model.Result, error)
}
