package commands

import (
	"context"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/core/ports"
)

// Audit trail messages recorded on status transitions. The strings are part
// of the API contract: clients read them from the event timeline.
const (
	msgOrderCreated     = "Order created"
	msgOrderCanceled    = "Order canceled"
	msgOrderValidated   = "Order validated"
	msgOrderQueued      = "Order queued for dispatch"
	msgOrderAssigned    = "Order assigned"
	msgMissionSubmitted = "Mission intent submitted"
	msgStatusUpdated    = "Status updated"
)

// transitionMessage returns the audit message for an automatic advancement
// into the given status.
func transitionMessage(status order.Status) string {
	switch status {
	case order.Validated:
		return msgOrderValidated
	case order.Queued:
		return msgOrderQueued
	case order.Assigned:
		return msgOrderAssigned
	default:
		return msgStatusUpdated
	}
}

// statusEventPayload builds the event payload of a transition: the traversed
// from/to pair plus any operation-specific context.
func statusEventPayload(from, to order.Status, extra map[string]any) map[string]any {
	payload := map[string]any{
		"from_status": from.String(),
		"to_status":   to.String(),
	}
	for key, value := range extra {
		payload[key] = value
	}
	return payload
}

// appendStatusEvent records the transition from -> to on the order's audit
// trail. The event type is the target status name.
func appendStatusEvent(
	ctx context.Context,
	events ports.EventRepository,
	orderID kernel.UUID,
	from, to order.Status,
	message string,
	extra map[string]any,
) error {
	event, err := order.NewStatusEvent(orderID, to, message, statusEventPayload(from, to, extra))
	if err != nil {
		return err
	}
	return events.Add(ctx, event)
}
