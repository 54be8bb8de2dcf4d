package commands

import (
	"errors"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/guard"
)

var ErrSubmitMissionCommandIsNotConstructed = errors.New(
	"SubmitMissionCommand must be created via NewSubmitMissionCommand constructor",
)

// SubmitMissionCommand requests the submission of a mission intent for an
// ASSIGNED order to the GCS bridge.
type SubmitMissionCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewSubmitMissionCommand creates a validated mission submission request.
func NewSubmitMissionCommand(orderID kernel.UUID) (SubmitMissionCommand, error) {
	if err := orderID.Validate(); err != nil {
		return SubmitMissionCommand{}, err
	}
	return SubmitMissionCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SubmitMissionCommand) Validate() error {
	return c.guard.Validate(ErrSubmitMissionCommandIsNotConstructed)
}

// OrderID returns the identifier of the order whose mission to submit.
func (c SubmitMissionCommand) OrderID() kernel.UUID {
	return c.orderID
}
