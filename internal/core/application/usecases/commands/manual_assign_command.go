package commands

import (
	"errors"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/guard"
)

var ErrManualAssignCommandIsNotConstructed = errors.New(
	"ManualAssignCommand must be created via NewManualAssignCommand constructor",
)

// ManualAssignCommand requests the assignment of a named drone to an order,
// bypassing automatic selection but never the eligibility rules.
type ManualAssignCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	droneID string

	guard guard.ConstructorGuard
}

// NewManualAssignCommand creates a validated manual assignment request.
func NewManualAssignCommand(orderID kernel.UUID, droneID string) (ManualAssignCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ManualAssignCommand{}, err
	}
	if droneID == "" {
		return ManualAssignCommand{}, errs.NewInvalidInputError("drone id is required")
	}
	return ManualAssignCommand{
		orderID: orderID,
		droneID: droneID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ManualAssignCommand) Validate() error {
	return c.guard.Validate(ErrManualAssignCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to assign.
func (c ManualAssignCommand) OrderID() kernel.UUID {
	return c.orderID
}

// DroneID returns the identifier of the requested drone.
func (c ManualAssignCommand) DroneID() string {
	return c.droneID
}
