package commands

import (
	"errors"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand requests the creation of a new delivery order. Customer
// name and phone are optional; everything else is validated on construction
// so handlers never see a malformed request.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID          kernel.UUID
	customerName     string
	customerPhone    string
	pickup           kernel.GeoPoint
	dropoff          kernel.GeoPoint
	dropoffAccuracyM *float64
	payloadWeightKg  float64
	payloadType      string
	priority         order.Priority

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a validated order creation request.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerName string,
	customerPhone string,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	dropoffAccuracyM *float64,
	payloadWeightKg float64,
	payloadType string,
	priority order.Priority,
) (CreateOrderCommand, error) {
	command := CreateOrderCommand{
		customerName:     customerName,
		customerPhone:    customerPhone,
		dropoffAccuracyM: dropoffAccuracyM,
		guard:            guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setPickup(pickup),
		command.setDropoff(dropoff),
		command.setPayload(payloadWeightKg, payloadType),
		command.setPriority(priority),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier assigned to the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerName returns the optional customer name.
func (c CreateOrderCommand) CustomerName() string {
	return c.customerName
}

// CustomerPhone returns the optional customer phone number.
func (c CreateOrderCommand) CustomerPhone() string {
	return c.customerPhone
}

// Pickup returns the pickup coordinates.
func (c CreateOrderCommand) Pickup() kernel.GeoPoint {
	return c.pickup
}

// Dropoff returns the dropoff coordinates.
func (c CreateOrderCommand) Dropoff() kernel.GeoPoint {
	return c.dropoff
}

// DropoffAccuracyM returns the optional dropoff accuracy in meters.
func (c CreateOrderCommand) DropoffAccuracyM() *float64 {
	return c.dropoffAccuracyM
}

// PayloadWeightKg returns the payload weight in kilograms.
func (c CreateOrderCommand) PayloadWeightKg() float64 {
	return c.payloadWeightKg
}

// PayloadType returns the payload type label.
func (c CreateOrderCommand) PayloadType() string {
	return c.payloadType
}

// Priority returns the requested priority.
func (c CreateOrderCommand) Priority() order.Priority {
	return c.priority
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setPickup(pickup kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return err
	}
	c.pickup = pickup
	return nil
}

func (c *CreateOrderCommand) setDropoff(dropoff kernel.GeoPoint) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}
	c.dropoff = dropoff
	return nil
}

func (c *CreateOrderCommand) setPayload(weightKg float64, payloadType string) error {
	if weightKg <= 0 {
		return errs.NewInvalidInputError("payload weight must be greater than 0")
	}
	if payloadType == "" {
		return errs.NewInvalidInputError("payload type is required")
	}
	c.payloadWeightKg = weightKg
	c.payloadType = payloadType
	return nil
}

func (c *CreateOrderCommand) setPriority(priority order.Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	c.priority = priority
	return nil
}
