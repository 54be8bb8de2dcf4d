// Package mission builds the mission intent documents submitted to the GCS
// bridge. An intent is the flight-plan request for one assigned order; it is
// published, never persisted; only its identifier is recorded on the job.
package mission

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dronedelivery/internal/core/domain/model/job"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/pkg/errs"
)

// Flight profile constants of the standard delivery mission.
const (
	CruiseAltitudeM   = 20
	DeliveryAltitudeM = 8
	LoiterTimeoutS    = 60
	LostLinkBehavior  = "RTL"
)

// standardActions is the fixed action sequence of a delivery flight.
var standardActions = []string{"TAKEOFF", "CRUISE", "DESCEND", "DROP_OR_WINCH", "ASCEND", "RTL"}

// Waypoint is a mission coordinate with altitudes in meters.
type Waypoint struct {
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	AltM         float64  `json:"alt_m"`
	DeliveryAltM *float64 `json:"delivery_alt_m,omitempty"`
}

// Constraints carries the flight constraints the drone must satisfy.
type Constraints struct {
	BatteryMinPct float64 `json:"battery_min_pct"`
	ServiceAreaID string  `json:"service_area_id"`
}

// Safety carries the failure-handling directives of the mission.
type Safety struct {
	AbortRTLOnFail   bool   `json:"abort_rtl_on_fail"`
	LoiterTimeoutS   int    `json:"loiter_timeout_s"`
	LostLinkBehavior string `json:"lost_link_behavior"`
}

// Intent is the mission intent document published to the GCS bridge.
type Intent struct {
	IntentID    string         `json:"intent_id"`
	OrderID     string         `json:"order_id"`
	DroneID     string         `json:"drone_id"`
	Pickup      Waypoint       `json:"pickup"`
	Dropoff     Waypoint       `json:"dropoff"`
	Actions     []string       `json:"actions"`
	Constraints Constraints    `json:"constraints"`
	Safety      Safety         `json:"safety"`
	Metadata    map[string]any `json:"metadata"`
}

// NewIntentID returns a fresh mission intent identifier of the form
// mi_<32 hex chars>.
func NewIntentID() string {
	return "mi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// BuildIntent assembles the mission intent for an assigned order and its
// active delivery job. The job must carry an assigned drone.
func BuildIntent(o *order.Order, j *job.DeliveryJob, constraints Constraints) (Intent, error) {
	if err := o.Validate(); err != nil {
		return Intent{}, err
	}
	if err := j.Validate(); err != nil {
		return Intent{}, err
	}
	if j.AssignedDroneID() == "" {
		return Intent{}, errs.NewConflictError("Order has no assigned drone")
	}

	deliveryAlt := float64(DeliveryAltitudeM)

	return Intent{
		IntentID: NewIntentID(),
		OrderID:  o.ID().String(),
		DroneID:  j.AssignedDroneID(),
		Pickup: Waypoint{
			Lat:  o.Pickup().Lat(),
			Lng:  o.Pickup().Lng(),
			AltM: CruiseAltitudeM,
		},
		Dropoff: Waypoint{
			Lat:          o.Dropoff().Lat(),
			Lng:          o.Dropoff().Lng(),
			AltM:         CruiseAltitudeM,
			DeliveryAltM: &deliveryAlt,
		},
		Actions:     append([]string(nil), standardActions...),
		Constraints: constraints,
		Safety: Safety{
			AbortRTLOnFail:   true,
			LoiterTimeoutS:   LoiterTimeoutS,
			LostLinkBehavior: LostLinkBehavior,
		},
		Metadata: map[string]any{
			"payload_type":      o.PayloadType(),
			"payload_weight_kg": o.PayloadWeightKg(),
			"priority":          string(o.Priority()),
			"created_at":        time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Validate performs a shallow sanity check on a built intent.
func (i Intent) Validate() error {
	if !strings.HasPrefix(i.IntentID, "mi_") {
		return errs.NewInvalidInputError(
			fmt.Sprintf("mission intent id %q does not carry the mi_ prefix", i.IntentID))
	}
	if i.OrderID == "" || i.DroneID == "" {
		return errs.NewInvalidInputError("mission intent requires order and drone identifiers")
	}
	return nil
}
