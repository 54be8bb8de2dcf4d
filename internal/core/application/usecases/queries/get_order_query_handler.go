package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/pkg/errs"
)

// GetOrderQueryHandler reads one order's detail view straight from the
// database.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for order detail queries.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query. Returns errs.ErrObjectNotFound when no order
// carries the identifier.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			public_tracking_id,
			customer_name,
			customer_phone,
			pickup_lat,
			pickup_lng,
			dropoff_lat,
			dropoff_lng,
			dropoff_accuracy_m,
			payload_weight_kg,
			payload_type,
			priority,
			status,
			created_at,
			updated_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	response, err := scanOrderDetail(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("orderID", query.OrderID())
		}
		return GetOrderQueryResponse{}, err
	}
	return response, nil
}

// scanOrderDetail maps one orders row into the detail read model.
func scanOrderDetail(row *sql.Row) (GetOrderQueryResponse, error) {
	var response GetOrderQueryResponse
	var id uuid.UUID
	var statusValue int

	err := row.Scan(
		&id,
		&response.PublicTrackingID,
		&response.CustomerName,
		&response.CustomerPhone,
		&response.Pickup.Lat,
		&response.Pickup.Lng,
		&response.Dropoff.Lat,
		&response.Dropoff.Lng,
		&response.DropoffAccuracyM,
		&response.PayloadWeightKg,
		&response.PayloadType,
		&response.Priority,
		&statusValue,
		&response.CreatedAt,
		&response.UpdatedAt,
	)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	response.ID = orderID
	response.Status = order.Status(statusValue).String()
	return response, nil
}
