// Package ports defines the contracts between the domain layer and
// infrastructure: repository interfaces, the unit of work, and the outbound
// integration clients. These interfaces establish dependency inversion and
// keep the application core testable.
package ports

import (
	"context"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns a NotFound error when no order carries the identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByTrackingID retrieves an order by its public tracking identifier.
	// Returns a NotFound error when no order carries the tracking id.
	GetByTrackingID(ctx context.Context, trackingID string) (*order.Order, error)

	// GetDispatchable retrieves orders awaiting assignment, oldest first.
	// Dispatchable means status CREATED, VALIDATED or QUEUED. The limit
	// bounds the result set; limit <= 0 means no bound.
	GetDispatchable(ctx context.Context, limit int) ([]*order.Order, error)
}
