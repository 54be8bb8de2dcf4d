package queries

import (
	"errors"
	"time"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/guard"
)

var ErrGetOrderEventsQueryIsNotConstructed = errors.New(
	"GetOrderEventsQuery must be created via NewGetOrderEventsQuery constructor",
)

// GetOrderEventsQuery retrieves the audit timeline of one order,
// chronologically.
type GetOrderEventsQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderEventsQuery creates a query for one order's event timeline.
func NewGetOrderEventsQuery(orderID kernel.UUID) (GetOrderEventsQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderEventsQuery{}, err
	}
	return GetOrderEventsQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderEventsQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderEventsQueryIsNotConstructed)
}

// OrderID returns the identifier of the order whose timeline is requested.
func (q GetOrderEventsQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderEventsQueryResponse is one timeline entry.
type GetOrderEventsQueryResponse struct {
	ID        kernel.UUID    `json:"id"`
	EventType string         `json:"event_type"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
