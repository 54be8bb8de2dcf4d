// Package jobrepo provides data transfer objects and mapping functions for
// delivery job persistence.
package jobrepo

import (
	"time"

	"github.com/google/uuid"

	"dronedelivery/internal/core/domain/model/job"
	"dronedelivery/internal/core/domain/model/kernel"
)

// JobDTO represents the database structure for persisting delivery jobs.
// Indexed by order for the single-active-job lookup.
type JobDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID `gorm:"type:uuid;index"`
	AssignedDroneID string    `gorm:"size:128"`
	MissionIntentID string    `gorm:"size:64"`
	EtaSeconds      *int
	Status          string `gorm:"size:16;index"`
	CreatedAt       time.Time
}

// TableName overrides GORM's default naming convention.
func (JobDTO) TableName() string {
	return "delivery_jobs"
}

func fromDomain(aggregate *job.DeliveryJob) JobDTO {
	return JobDTO{
		ID:              aggregate.ID().Bytes(),
		OrderID:         aggregate.OrderID().Bytes(),
		AssignedDroneID: aggregate.AssignedDroneID(),
		MissionIntentID: aggregate.MissionIntentID(),
		EtaSeconds:      aggregate.EtaSeconds(),
		Status:          string(aggregate.Status()),
		CreatedAt:       aggregate.CreatedAt(),
	}
}

func toDomain(dto JobDTO) (*job.DeliveryJob, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	return job.RestoreDeliveryJob(
		id,
		orderID,
		dto.AssignedDroneID,
		dto.MissionIntentID,
		dto.EtaSeconds,
		job.Status(dto.Status),
		dto.CreatedAt,
	)
}
