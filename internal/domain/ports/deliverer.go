package ports

import (
	"context"

	"autotask-relay/internal/domain/model"
)

// Deliverer performs a single outbound delivery attempt (e.g. a Discord webhook POST).
type Deliverer interface {
	Deliver(ctx context.Context, req model.DeliveryRequest) error
}
