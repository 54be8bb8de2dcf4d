// Package queries contains the read side of the service. Handlers bypass the
// repositories and read through GORM directly, returning flat read models
// shaped for the HTTP layer.
package queries

import (
	"errors"
	"time"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves the full detail view of a single order.
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for one order's detail view.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the identifier of the requested order.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GeoPointResponse is a latitude/longitude pair in a read model.
type GeoPointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GetOrderQueryResponse is the detail read model of one order.
type GetOrderQueryResponse struct {
	ID               kernel.UUID      `json:"id"`
	PublicTrackingID string           `json:"public_tracking_id"`
	CustomerName     string           `json:"customer_name"`
	CustomerPhone    string           `json:"customer_phone"`
	Pickup           GeoPointResponse `json:"pickup"`
	Dropoff          GeoPointResponse `json:"dropoff"`
	DropoffAccuracyM *float64         `json:"dropoff_accuracy_m,omitempty"`
	PayloadWeightKg  float64          `json:"payload_weight_kg"`
	PayloadType      string           `json:"payload_type"`
	Priority         string           `json:"priority"`
	Status           string           `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
