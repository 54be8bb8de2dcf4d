package ports

import (
	"context"

	"dronedelivery/internal/core/domain/model/mission"
)

// MissionPublisher submits mission intents to the ground control station
// bridge. Publishing is the point of no return for a mission submission: the
// caller records the intent id and advances the order only after a
// successful publish.
type MissionPublisher interface {
	// PublishIntent delivers the intent to the bridge. Transient transport
	// failures return an Unavailable error so callers can retry; malformed
	// broker replies surface as protocol errors and must not be retried.
	PublishIntent(ctx context.Context, intent mission.Intent) error
}
