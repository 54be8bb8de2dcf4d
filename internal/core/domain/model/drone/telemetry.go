// Package drone contains the read-only telemetry snapshot of a fleet drone.
// Telemetry is fetched from the fleet service per dispatch cycle and never
// persisted; the dispatch engine consumes it to filter and score candidates.
package drone

import (
	"fmt"
	"strings"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
)

// PayloadTypeAny matches every order payload type. An empty payload type on
// telemetry is treated the same way: no restriction.
const PayloadTypeAny = "ANY"

// Telemetry is an immutable snapshot of one drone's state and capability
// constraints. Constraint fields left unset (nil pointers, empty payload
// type) mean "no restriction".
type Telemetry struct {
	droneID      string
	position     kernel.GeoPoint
	battery      float64
	isAvailable  bool
	maxPayloadKg *float64
	payloadType  string
	serviceArea  *kernel.BoundingBox
}

// NewTelemetry validates and creates a telemetry snapshot. Battery must be
// within [0, 100]; the position is validated by its own constructor.
func NewTelemetry(
	droneID string,
	position kernel.GeoPoint,
	battery float64,
	isAvailable bool,
	maxPayloadKg *float64,
	payloadType string,
	serviceArea *kernel.BoundingBox,
) (Telemetry, error) {
	if droneID == "" {
		return Telemetry{}, errs.NewInvalidInputError("drone id is required")
	}
	if err := position.Validate(); err != nil {
		return Telemetry{}, err
	}
	if battery < 0 || battery > 100 {
		return Telemetry{}, errs.NewInvalidInputError(
			fmt.Sprintf("battery %v is outside [0, 100]", battery))
	}

	return Telemetry{
		droneID:      droneID,
		position:     position,
		battery:      battery,
		isAvailable:  isAvailable,
		maxPayloadKg: maxPayloadKg,
		payloadType:  payloadType,
		serviceArea:  serviceArea,
	}, nil
}

// DroneID returns the fleet-wide drone identifier.
func (t Telemetry) DroneID() string {
	return t.droneID
}

// Position returns the drone's last reported position.
func (t Telemetry) Position() kernel.GeoPoint {
	return t.position
}

// Battery returns the battery charge percentage in [0, 100].
func (t Telemetry) Battery() float64 {
	return t.battery
}

// IsAvailable reports whether the fleet marks the drone as assignable.
func (t Telemetry) IsAvailable() bool {
	return t.isAvailable
}

// MaxPayloadKg returns the payload capacity constraint, or nil when the
// drone reported none.
func (t Telemetry) MaxPayloadKg() *float64 {
	return t.maxPayloadKg
}

// SupportsPayloadType reports whether the drone can carry the given payload
// type. An empty or "ANY" constraint supports everything; otherwise the
// comparison is case-insensitive.
func (t Telemetry) SupportsPayloadType(payloadType string) bool {
	constraint := strings.ToUpper(t.payloadType)
	if constraint == "" || constraint == PayloadTypeAny {
		return true
	}
	return constraint == strings.ToUpper(payloadType)
}

// ServiceArea returns the drone's service-area bounding box, or nil when the
// drone reported none.
func (t Telemetry) ServiceArea() *kernel.BoundingBox {
	return t.serviceArea
}
