package commands

import (
	"errors"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand advances an order's lifecycle status, driven by
// operator actions or drone telemetry (LAUNCHED through DELIVERED). The
// transition is validated against the state machine; reaching a terminal
// status also settles the order's active delivery job.
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	next    order.Status

	guard guard.ConstructorGuard
}

// NewTransitionOrderCommand creates a validated transition request.
func NewTransitionOrderCommand(orderID kernel.UUID, next order.Status) (TransitionOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), next.Validate()); err != nil {
		return TransitionOrderCommand{}, err
	}
	return TransitionOrderCommand{
		orderID: orderID,
		next:    next,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to advance.
func (c TransitionOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Next returns the requested target status.
func (c TransitionOrderCommand) Next() order.Status {
	return c.next
}
