package ops

import (
	natsadapter "github.com/calummacrae/buswatch/internal/adapters/nats"
)

// Dependencies holds everything the ops handlers need.
type Dependencies struct {
	Status *StatusTracker
	Events *natsadapter.Publisher
}
