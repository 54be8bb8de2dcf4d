// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, handling the conversion between domain entities and database
// representations.
package orderrepo

import (
	"time"

	"github.com/google/uuid"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Indexed by status for dispatch queries and by the public tracking id for
// customer lookups.
type OrderDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	PublicTrackingID string    `gorm:"size:32;uniqueIndex"`
	CustomerName     string    `gorm:"size:255"`
	CustomerPhone    string    `gorm:"size:64"`
	Pickup           GeoDTO    `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff          GeoDTO    `gorm:"embedded;embeddedPrefix:dropoff_"`
	DropoffAccuracyM *float64
	PayloadWeightKg  float64
	PayloadType      string `gorm:"size:64"`
	Priority         string `gorm:"size:16"`
	Status           int    `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// GeoDTO represents embedded latitude/longitude coordinates.
type GeoDTO struct {
	Lat float64
	Lng float64
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	return OrderDTO{
		ID:               aggregate.ID().Bytes(),
		PublicTrackingID: aggregate.PublicTrackingID(),
		CustomerName:     aggregate.CustomerName(),
		CustomerPhone:    aggregate.CustomerPhone(),
		Pickup:           GeoDTO{Lat: aggregate.Pickup().Lat(), Lng: aggregate.Pickup().Lng()},
		Dropoff:          GeoDTO{Lat: aggregate.Dropoff().Lat(), Lng: aggregate.Dropoff().Lng()},
		DropoffAccuracyM: aggregate.DropoffAccuracyM(),
		PayloadWeightKg:  aggregate.PayloadWeightKg(),
		PayloadType:      aggregate.PayloadType(),
		Priority:         string(aggregate.Priority()),
		Status:           int(aggregate.Status()),
		CreatedAt:        aggregate.CreatedAt(),
		UpdatedAt:        aggregate.UpdatedAt(),
	}
}

// toDomain converts a database DTO to an order domain aggregate using
// RestoreOrder, revalidating coordinates and status on the way out.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	pickup, err := kernel.NewGeoPoint(dto.Pickup.Lat, dto.Pickup.Lng)
	if err != nil {
		return nil, err
	}
	dropoff, err := kernel.NewGeoPoint(dto.Dropoff.Lat, dto.Dropoff.Lng)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		dto.PublicTrackingID,
		dto.CustomerName,
		dto.CustomerPhone,
		pickup,
		dropoff,
		dto.DropoffAccuracyM,
		dto.PayloadWeightKg,
		dto.PayloadType,
		order.Priority(dto.Priority),
		order.Status(dto.Status),
		dto.CreatedAt,
		dto.UpdatedAt,
	)
}
