package queries

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
)

// GetOrderEventsQueryHandler reads an order's audit timeline straight from
// the database.
type GetOrderEventsQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderEventsQueryHandler creates a handler for event timeline queries.
func NewGetOrderEventsQueryHandler(db *gorm.DB) GetOrderEventsQueryHandler {
	return GetOrderEventsQueryHandler{db: db}
}

// Handle executes the timeline query, oldest event first. An order without
// events yields an empty timeline, not an error.
func (h GetOrderEventsQueryHandler) Handle(
	ctx context.Context,
	query GetOrderEventsQuery,
) ([]GetOrderEventsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	events := make([]GetOrderEventsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			event_type,
			message,
			payload,
			created_at
		FROM delivery_events
		WHERE order_id = ?
		ORDER BY created_at ASC
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var event GetOrderEventsQueryResponse
		var id uuid.UUID
		var payload []byte

		err = rows.Scan(
			&id,
			&event.EventType,
			&event.Message,
			&payload,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		eventID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		event.ID = eventID

		if len(payload) > 0 {
			if err = json.Unmarshal(payload, &event.Payload); err != nil {
				return nil, errs.NewInvalidInputErrorWithCause("stored event payload is corrupt", err)
			}
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
