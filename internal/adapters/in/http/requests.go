package http

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	CustomerName     string   `json:"customer_name"`
	CustomerPhone    string   `json:"customer_phone"`
	PickupLat        float64  `json:"pickup_lat"`
	PickupLng        float64  `json:"pickup_lng"`
	DropoffLat       float64  `json:"dropoff_lat"`
	DropoffLng       float64  `json:"dropoff_lng"`
	DropoffAccuracyM *float64 `json:"dropoff_accuracy_m,omitempty"`
	PayloadWeightKg  float64  `json:"payload_weight_kg"`
	PayloadType      string   `json:"payload_type"`
	Priority         string   `json:"priority"`
}

// ManualAssignRequest is the body of POST /api/v1/orders/:id/assign.
type ManualAssignRequest struct {
	DroneID string `json:"drone_id"`
}

// StatusUpdateRequest is the body of POST /api/v1/orders/:id/status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// PodCreateRequest is the body of POST /api/v1/orders/:id/pod.
type PodCreateRequest struct {
	Method      string         `json:"method"`
	PhotoURL    string         `json:"photo_url,omitempty"`
	OTPCode     string         `json:"otp_code,omitempty"`
	ConfirmedBy string         `json:"confirmed_by,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// DispatchRunRequest is the optional body of POST /api/v1/dispatch/run.
type DispatchRunRequest struct {
	MaxAssignments int `json:"max_assignments,omitempty"`
}

// MissionSubmitResponse is the body returned by a successful mission
// submission.
type MissionSubmitResponse struct {
	OrderID         string `json:"order_id"`
	MissionIntentID string `json:"mission_intent_id"`
	Status          string `json:"status"`
}
