package ports

import (
	"context"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
)

// EventRepository defines the persistence contract for the append-only
// delivery event audit trail.
type EventRepository interface {
	// Add appends an event to the audit trail. Events are immutable.
	Add(ctx context.Context, event *order.DeliveryEvent) error

	// GetByOrderID retrieves the order's events in chronological order.
	GetByOrderID(ctx context.Context, orderID kernel.UUID) ([]*order.DeliveryEvent, error)
}
