// Package eventrepo persists the append-only delivery event audit trail.
// Events are write-once: the repository exposes Add and chronological reads,
// nothing else.
package eventrepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/pkg/errs"
)

// EventDTO represents the database structure for delivery events.
type EventDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	EventType string    `gorm:"size:32"`
	Message   string    `gorm:"size:512"`
	Payload   []byte    `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName overrides GORM's default naming convention.
func (EventDTO) TableName() string {
	return "delivery_events"
}

func fromDomain(event *order.DeliveryEvent) (EventDTO, error) {
	var payload []byte
	if event.Payload() != nil {
		raw, err := json.Marshal(event.Payload())
		if err != nil {
			return EventDTO{}, errs.NewInvalidInputErrorWithCause("event payload cannot be serialized", err)
		}
		payload = raw
	}

	return EventDTO{
		ID:        event.ID().Bytes(),
		OrderID:   event.OrderID().Bytes(),
		EventType: event.EventType(),
		Message:   event.Message(),
		Payload:   payload,
		CreatedAt: event.CreatedAt(),
	}, nil
}

func toDomain(dto EventDTO) (*order.DeliveryEvent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if len(dto.Payload) > 0 {
		if err := json.Unmarshal(dto.Payload, &payload); err != nil {
			return nil, errs.NewInvalidInputErrorWithCause("stored event payload is corrupt", err)
		}
	}

	return order.RestoreDeliveryEvent(id, orderID, dto.EventType, dto.Message, payload, dto.CreatedAt)
}
