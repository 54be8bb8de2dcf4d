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

// GetTrackingViewQueryHandler reads the public tracking view straight from
// the database.
type GetTrackingViewQueryHandler struct {
	db *gorm.DB
}

// NewGetTrackingViewQueryHandler creates a handler for tracking view queries.
func NewGetTrackingViewQueryHandler(db *gorm.DB) GetTrackingViewQueryHandler {
	return GetTrackingViewQueryHandler{db: db}
}

// Handle executes the tracking lookup. Returns errs.ErrObjectNotFound when no
// order carries the tracking id. The proof-of-delivery summary appears only
// for DELIVERED orders that have a recorded proof.
func (h GetTrackingViewQueryHandler) Handle(
	ctx context.Context,
	query GetTrackingViewQuery,
) (GetTrackingViewQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetTrackingViewQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			public_tracking_id,
			status
		FROM orders
		WHERE public_tracking_id = ?
	`, query.TrackingID()).Row()

	var response GetTrackingViewQueryResponse
	var id uuid.UUID
	var statusValue int

	err := row.Scan(&id, &response.PublicTrackingID, &statusValue)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetTrackingViewQueryResponse{}, errs.NewObjectNotFoundError(
				"trackingID", query.TrackingID())
		}
		return GetTrackingViewQueryResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetTrackingViewQueryResponse{}, err
	}
	response.OrderID = orderID
	response.Status = order.Status(statusValue).String()

	if order.Status(statusValue) == order.Delivered {
		summary, err := h.latestPodSummary(ctx, id)
		if err != nil {
			return GetTrackingViewQueryResponse{}, err
		}
		response.PodSummary = summary
	}

	return response, nil
}

// latestPodSummary reads the newest proof of delivery for the order, or nil
// when none was recorded yet.
func (h GetTrackingViewQueryHandler) latestPodSummary(
	ctx context.Context,
	orderID uuid.UUID,
) (*TrackingPodSummary, error) {
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			method,
			photo_url
		FROM proof_of_deliveries
		WHERE order_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID).Row()

	var summary TrackingPodSummary
	err := row.Scan(&summary.Method, &summary.PhotoURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}
