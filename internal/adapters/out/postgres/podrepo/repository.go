package podrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/pod"
	"dronedelivery/internal/pkg/errs"
)

// GormPodRepository implements ports.ProofOfDeliveryRepository using GORM.
type GormPodRepository struct {
	db *gorm.DB
}

// NewGormPodRepository creates a new GORM proof-of-delivery repository.
func NewGormPodRepository(db *gorm.DB) *GormPodRepository {
	return &GormPodRepository{db: db}
}

// Add persists a new proof-of-delivery record.
func (r *GormPodRepository) Add(ctx context.Context, proof *pod.ProofOfDelivery) error {
	if err := proof.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(proof)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetLatestByOrderID retrieves the order's most recent proof.
func (r *GormPodRepository) GetLatestByOrderID(ctx context.Context, orderID kernel.UUID) (*pod.ProofOfDelivery, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto PodDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("created_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("proof of delivery for order", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
