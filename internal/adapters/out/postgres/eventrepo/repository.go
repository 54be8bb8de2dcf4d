package eventrepo

import (
	"context"

	"gorm.io/gorm"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
)

// GormEventRepository implements ports.EventRepository using GORM.
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GORM delivery event repository.
// Events are not aggregates and are not tracked by the unit of work.
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// Add appends an event to the audit trail.
func (r *GormEventRepository) Add(ctx context.Context, event *order.DeliveryEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(event)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetByOrderID retrieves the order's events in chronological order.
func (r *GormEventRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) ([]*order.DeliveryEvent, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []EventDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("created_at ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]*order.DeliveryEvent, 0, len(dtos))
	for _, dto := range dtos {
		event, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
