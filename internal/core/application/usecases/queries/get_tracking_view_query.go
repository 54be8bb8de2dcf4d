package queries

import (
	"errors"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/guard"
)

var ErrGetTrackingViewQueryIsNotConstructed = errors.New(
	"GetTrackingViewQuery must be created via NewGetTrackingViewQuery constructor",
)

// GetTrackingViewQuery retrieves the public tracking view of an order by its
// tracking identifier. The view deliberately exposes only the status and, for
// delivered orders, a proof-of-delivery summary: it serves unauthenticated
// customers.
type GetTrackingViewQuery struct {
	trackingID string

	guard guard.ConstructorGuard
}

// NewGetTrackingViewQuery creates a query for the public tracking view.
func NewGetTrackingViewQuery(trackingID string) (GetTrackingViewQuery, error) {
	if trackingID == "" {
		return GetTrackingViewQuery{}, errs.NewInvalidInputError("tracking id is required")
	}
	return GetTrackingViewQuery{trackingID: trackingID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetTrackingViewQuery) Validate() error {
	return q.guard.Validate(ErrGetTrackingViewQueryIsNotConstructed)
}

// TrackingID returns the public tracking identifier to look up.
func (q GetTrackingViewQuery) TrackingID() string {
	return q.trackingID
}

// TrackingPodSummary is the proof-of-delivery excerpt shown to customers.
type TrackingPodSummary struct {
	Method   string `json:"method"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// GetTrackingViewQueryResponse is the public tracking read model.
type GetTrackingViewQueryResponse struct {
	OrderID          kernel.UUID         `json:"order_id"`
	PublicTrackingID string              `json:"public_tracking_id"`
	Status           string              `json:"status"`
	PodSummary       *TrackingPodSummary `json:"pod_summary,omitempty"`
}
