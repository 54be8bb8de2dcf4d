package jobrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dronedelivery/internal/core/domain/model/job"
	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
)

// GormJobRepository implements ports.JobRepository using GORM.
type GormJobRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormJobRepository creates a new GORM delivery job repository.
func NewGormJobRepository(db *gorm.DB, tracker aggregateTracker) *GormJobRepository {
	return &GormJobRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new delivery job to the database.
func (r *GormJobRepository) Add(ctx context.Context, aggregate *job.DeliveryJob) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing delivery job to the database.
func (r *GormJobRepository) Update(ctx context.Context, aggregate *job.DeliveryJob) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&JobDTO{}).Where("id = ?", dto.ID).Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a delivery job by ID.
func (r *GormJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.DeliveryJob, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto JobDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery job", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetActiveByOrderID retrieves the most recent ACTIVE job of the order.
func (r *GormJobRepository) GetActiveByOrderID(ctx context.Context, orderID kernel.UUID) (*job.DeliveryJob, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto JobDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID.Bytes(), string(job.StatusActive)).
		Order("created_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("active delivery job for order", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
