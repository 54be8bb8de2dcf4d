package ports

import (
	"context"

	"dronedelivery/internal/core/domain/model/drone"
)

// FleetClient fetches the latest telemetry snapshot of the drone fleet.
// Implementations talk to the external fleet service; telemetry is consumed
// per dispatch cycle and never persisted.
type FleetClient interface {
	// GetLatestTelemetry returns one snapshot per drone. Rows with
	// out-of-range coordinates or battery are dropped, not surfaced as
	// errors. Transport failures return an Unavailable error.
	GetLatestTelemetry(ctx context.Context) ([]drone.Telemetry, error)
}
