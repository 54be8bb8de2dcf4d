package commands

import (
	"errors"

	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/guard"
)

var ErrAutoDispatchCommandIsNotConstructed = errors.New(
	"AutoDispatchCommand must be created via NewAutoDispatchCommand constructor",
)

// AutoDispatchCommand requests one dispatch run: match waiting orders with
// the current fleet snapshot, oldest order first, each drone used at most
// once, stopping after maxAssignments assignments.
type AutoDispatchCommand struct { //nolint:recvcheck //using for validation
	maxAssignments int

	guard guard.ConstructorGuard
}

// NewAutoDispatchCommand creates a validated dispatch run request.
func NewAutoDispatchCommand(maxAssignments int) (AutoDispatchCommand, error) {
	if maxAssignments <= 0 {
		return AutoDispatchCommand{}, errs.NewInvalidInputError("max assignments must be greater than 0")
	}
	return AutoDispatchCommand{
		maxAssignments: maxAssignments,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AutoDispatchCommand) Validate() error {
	return c.guard.Validate(ErrAutoDispatchCommandIsNotConstructed)
}

// MaxAssignments returns the assignment cap of this run.
func (c AutoDispatchCommand) MaxAssignments() int {
	return c.maxAssignments
}

// Assignment reports one order-to-drone match made by a dispatch run.
type Assignment struct {
	OrderID string
	DroneID string
	JobID   string
}

// AutoDispatchResult summarizes a dispatch run.
type AutoDispatchResult struct {
	// Examined is the number of dispatchable orders considered.
	Examined int

	// Assignments lists the matches committed by this run, in order.
	Assignments []Assignment
}
