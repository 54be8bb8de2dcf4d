package ports

import (
	"context"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/pod"
)

// ProofOfDeliveryRepository defines the persistence contract for
// proof-of-delivery records.
type ProofOfDeliveryRepository interface {
	// Add persists a new proof-of-delivery record.
	Add(ctx context.Context, proof *pod.ProofOfDelivery) error

	// GetLatestByOrderID retrieves the order's most recent proof, or a
	// NotFound error when none was recorded.
	GetLatestByOrderID(ctx context.Context, orderID kernel.UUID) (*pod.ProofOfDelivery, error)
}
