package ports

import (
	"context"

	"dronedelivery/internal/core/domain/model/job"
	"dronedelivery/internal/core/domain/model/kernel"
)

// JobRepository defines the persistence contract for delivery job aggregates.
type JobRepository interface {
	// Add persists a new delivery job to storage.
	Add(ctx context.Context, aggregate *job.DeliveryJob) error

	// Update persists changes to an existing delivery job.
	Update(ctx context.Context, aggregate *job.DeliveryJob) error

	// Get retrieves a delivery job by its unique identifier.
	// Returns a NotFound error when no job carries the identifier.
	Get(ctx context.Context, id kernel.UUID) (*job.DeliveryJob, error)

	// GetActiveByOrderID retrieves the order's ACTIVE delivery job, the most
	// recently created one when several exist. Returns a NotFound error when
	// the order has no active job.
	GetActiveByOrderID(ctx context.Context, orderID kernel.UUID) (*job.DeliveryJob, error)
}
