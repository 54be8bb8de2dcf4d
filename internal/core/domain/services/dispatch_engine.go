package services

import (
	"errors"
	"fmt"
	"math"

	"dronedelivery/internal/core/domain/model/drone"
	"dronedelivery/internal/core/domain/model/job"
	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/pkg/errs"
)

// ErrNoCompatibleDrone is returned when no drone in the fleet passes the
// eligibility filter for an order.
var ErrNoCompatibleDrone = errors.New("no compatible drone found")

// Incompatibility reasons returned to callers of manual assignment. The
// strings are part of the API contract.
const (
	ReasonUnavailable         = "Drone unavailable"
	ReasonBatteryTooLow       = "Drone battery too low"
	ReasonPayloadTooHeavy     = "Drone payload capacity exceeded"
	ReasonPayloadIncompatible = "Drone payload type incompatible"
	ReasonServiceAreaMismatch = "Drone service area mismatch"
)

// DispatchConfig carries the tunable parameters of drone selection.
type DispatchConfig struct {
	// MinBatteryPct is the minimum battery percentage for assignment.
	MinBatteryPct float64

	// DistanceWeight scales the great-circle distance term of the score.
	DistanceWeight float64

	// BatteryWeight scales the battery term of the score.
	BatteryWeight float64
}

// DefaultDispatchConfig returns the production defaults: 30% battery floor
// and distance-dominant scoring.
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		MinBatteryPct:  30.0,
		DistanceWeight: 1.0,
		BatteryWeight:  0.2,
	}
}

// DispatchEngine is the domain service that matches orders with drones.
// It filters the fleet by eligibility, scores the remaining candidates and
// performs the state-machine-validated advancement to ASSIGNED, creating the
// order's DeliveryJob. The engine itself is stateless; transactional
// atomicity of its side effects is the caller's responsibility.
type DispatchEngine struct {
	config DispatchConfig
}

// NewDispatchEngine creates a dispatch engine with the given configuration.
func NewDispatchEngine(config DispatchConfig) DispatchEngine {
	return DispatchEngine{config: config}
}

// IncompatibilityReason returns the first violated eligibility rule for the
// drone against the order, or "" when the drone is compatible. Constraint
// fields the drone did not report are treated as "no restriction".
func (e DispatchEngine) IncompatibilityReason(o *order.Order, d drone.Telemetry) string {
	if !d.IsAvailable() {
		return ReasonUnavailable
	}
	if d.Battery() < e.config.MinBatteryPct {
		return ReasonBatteryTooLow
	}
	if maxKg := d.MaxPayloadKg(); maxKg != nil && o.PayloadWeightKg() > *maxKg {
		return ReasonPayloadTooHeavy
	}
	if !d.SupportsPayloadType(o.PayloadType()) {
		return ReasonPayloadIncompatible
	}
	if area := d.ServiceArea(); area != nil && !area.Contains(o.Pickup()) {
		return ReasonServiceAreaMismatch
	}
	return ""
}

// Score computes the dispatch score of a drone for an order:
//
//	distanceWeight * distanceKm(pickup, drone) - batteryWeight * battery/100
//
// Lower scores win. With both weights zero every drone ties and selection
// falls through to the battery tie-break.
func (e DispatchEngine) Score(o *order.Order, d drone.Telemetry) (float64, error) {
	distance, err := o.Pickup().DistanceKm(d.Position())
	if err != nil {
		return 0, err
	}
	return e.config.DistanceWeight*distance - e.config.BatteryWeight*d.Battery()/100, nil
}

// SelectDrone returns the best compatible drone for the order, skipping
// drones whose IDs appear in used. Candidates are ranked by ascending score;
// exact score ties break toward the higher battery, then the lexicographically
// smaller drone ID, making selection deterministic regardless of fleet order.
// Returns ErrNoCompatibleDrone when nothing is eligible.
func (e DispatchEngine) SelectDrone(
	o *order.Order,
	fleet []drone.Telemetry,
	used map[string]bool,
) (drone.Telemetry, error) {
	if err := o.Validate(); err != nil {
		return drone.Telemetry{}, err
	}

	var (
		best      drone.Telemetry
		bestScore = math.MaxFloat64
		found     bool
	)

	for _, d := range fleet {
		if used[d.DroneID()] {
			continue
		}
		if reason := e.IncompatibilityReason(o, d); reason != "" {
			continue
		}

		score, err := e.Score(o, d)
		if err != nil {
			return drone.Telemetry{}, err
		}

		if !found || score < bestScore || (score == bestScore && betterTieBreak(d, best)) {
			best = d
			bestScore = score
			found = true
		}
	}

	if !found {
		return drone.Telemetry{}, ErrNoCompatibleDrone
	}
	return best, nil
}

// betterTieBreak reports whether candidate wins the tie against incumbent:
// strictly higher battery first, smaller drone ID as the final discriminator.
func betterTieBreak(candidate, incumbent drone.Telemetry) bool {
	if candidate.Battery() != incumbent.Battery() {
		return candidate.Battery() > incumbent.Battery()
	}
	return candidate.DroneID() < incumbent.DroneID()
}

// PrepareForAssignment advances an order through any skipped intermediate
// states (CREATED -> VALIDATED -> QUEUED) so it is ready for assignment.
// It returns the statuses traversed, in order, for the caller's audit trail.
// Orders already QUEUED traverse nothing; orders in any other status fail
// with a Conflict.
func (e DispatchEngine) PrepareForAssignment(o *order.Order) ([]order.Status, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if !o.Status().IsDispatchable() {
		return nil, errs.NewConflictError(
			fmt.Sprintf("Order cannot be assigned from status %s", o.Status()))
	}

	var traversed []order.Status
	for _, next := range []order.Status{order.Validated, order.Queued} {
		if err := o.Status().CanTransitionTo(next); err != nil {
			if o.Status() == next || isLaterThan(o.Status(), next) {
				continue
			}
			return nil, err
		}
		if o.Status() == next {
			continue
		}
		if err := o.TransitionTo(next); err != nil {
			return nil, err
		}
		traversed = append(traversed, next)
	}

	return traversed, nil
}

// isLaterThan reports whether s already passed target on the happy path.
func isLaterThan(s, target order.Status) bool {
	return int(s) > int(target)
}

// Assign advances a QUEUED order to ASSIGNED and creates its ACTIVE
// DeliveryJob for the given drone. The caller persists both and commits them
// in one unit of work; partial assignment must never become observable.
func (e DispatchEngine) Assign(o *order.Order, droneID string) (*job.DeliveryJob, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := o.TransitionTo(order.Assigned); err != nil {
		return nil, err
	}

	assignment, err := job.NewDeliveryJob(kernel.NewUUID(), o.ID(), droneID)
	if err != nil {
		return nil, err
	}
	return assignment, nil
}
