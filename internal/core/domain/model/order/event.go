package order

import (
	"errors"
	"time"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
)

// DeliveryEvent is one entry in an order's append-only audit trail. Every
// status change produces an event whose type is the new status name; the
// payload carries machine-readable context such as the assigned drone or the
// mission intent identifier.
type DeliveryEvent struct {
	id        kernel.UUID
	orderID   kernel.UUID
	eventType string
	message   string
	payload   map[string]any
	createdAt time.Time

	isConstructed bool
}

// ErrEventIsNotConstructed is returned when a DeliveryEvent was not created
// via NewDeliveryEvent or RestoreDeliveryEvent.
var ErrEventIsNotConstructed = errors.New("DeliveryEvent must be created via NewDeliveryEvent or RestoreDeliveryEvent")

// NewStatusEvent records the transition of an order into the given status.
// The event type is the status name verbatim.
func NewStatusEvent(orderID kernel.UUID, status Status, message string, payload map[string]any) (*DeliveryEvent, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	return NewDeliveryEvent(orderID, status.EventType(), message, payload)
}

// NewDeliveryEvent creates an audit trail entry for the order.
func NewDeliveryEvent(orderID kernel.UUID, eventType string, message string, payload map[string]any) (*DeliveryEvent, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if eventType == "" {
		return nil, errs.NewInvalidInputError("event type is required")
	}

	return &DeliveryEvent{
		id:            kernel.NewUUID(),
		orderID:       orderID,
		eventType:     eventType,
		message:       message,
		payload:       payload,
		createdAt:     time.Now().UTC(),
		isConstructed: true,
	}, nil
}

// RestoreDeliveryEvent reconstructs a DeliveryEvent from persistence.
func RestoreDeliveryEvent(
	id kernel.UUID,
	orderID kernel.UUID,
	eventType string,
	message string,
	payload map[string]any,
	createdAt time.Time,
) (*DeliveryEvent, error) {
	if err := errors.Join(id.Validate(), orderID.Validate()); err != nil {
		return nil, err
	}
	if eventType == "" {
		return nil, errs.NewInvalidInputError("event type is required")
	}

	return &DeliveryEvent{
		id:            id,
		orderID:       orderID,
		eventType:     eventType,
		message:       message,
		payload:       payload,
		createdAt:     createdAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the event was properly constructed.
func (e *DeliveryEvent) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEventIsNotConstructed
	}
	return nil
}

// ID returns the event identifier.
func (e *DeliveryEvent) ID() kernel.UUID {
	return e.id
}

// OrderID returns the identifier of the order this event belongs to.
func (e *DeliveryEvent) OrderID() kernel.UUID {
	return e.orderID
}

// EventType returns the event type, the status name for status events.
func (e *DeliveryEvent) EventType() string {
	return e.eventType
}

// Message returns the human-readable event description.
func (e *DeliveryEvent) Message() string {
	return e.message
}

// Payload returns the machine-readable event context, or nil.
func (e *DeliveryEvent) Payload() map[string]any {
	return e.payload
}

// CreatedAt returns the event timestamp.
func (e *DeliveryEvent) CreatedAt() time.Time {
	return e.createdAt
}
