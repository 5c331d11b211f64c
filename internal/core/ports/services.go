package ports

import (
	"context"

	"github.com/calummacrae/buswatch/internal/core/domain"
)

// VehicleSource fetches current vehicle positions from a tracking feed.
type VehicleSource interface {
	Fetch(ctx context.Context) ([]domain.Vehicle, error)
}

// Notifier delivers a proximity alert to the user.
type Notifier interface {
	Notify(ctx context.Context, m domain.Match) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishMatch(ctx context.Context, m domain.Match) error
}
