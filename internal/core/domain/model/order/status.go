package order

import (
	"fmt"

	"dronedelivery/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery order.
// It implements a state machine with defined transitions to ensure orders
// follow the correct delivery workflow.
//
// State transitions:
//
//	CREATED ──> VALIDATED ──> QUEUED ──> ASSIGNED ──> MISSION_SUBMITTED
//	   │            │            │           │               │
//	   └────────────┴────────────┴──> CANCELED               │
//	                                                         v
//	                 LAUNCHED ──> ENROUTE ──> ARRIVED ──> DELIVERING ──> DELIVERED
//	                     │            │           │            │
//	                     └────────────┴───────────┴──> FAILED / ABORTED
//
// DELIVERED, CANCELED, FAILED and ABORTED are terminal: no transition leaves
// them. A transition to the current status is always a permitted no-op.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Created is the initial status of every new order.
	Created

	// Validated means the order passed business validation.
	Validated

	// Queued means the order is waiting for drone assignment.
	Queued

	// Assigned means a drone has been assigned and a delivery job exists.
	Assigned

	// MissionSubmitted means the mission intent was handed to the GCS bridge.
	MissionSubmitted

	// Launched means the drone has taken off.
	Launched

	// Enroute means the drone is cruising toward the dropoff.
	Enroute

	// Arrived means the drone reached the dropoff area.
	Arrived

	// Delivering means the payload handover is in progress.
	Delivering

	// Delivered is the terminal success status.
	Delivered

	// Canceled is the terminal status for orders withdrawn before launch.
	Canceled

	// Failed is the terminal status for delivery failures.
	Failed

	// Aborted is the terminal status for missions aborted in flight.
	Aborted
)

// getStatusStrings returns the canonical name of every status. The names are
// also the delivery event type labels, verbatim.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:          "UNKNOWN",
		Created:          "CREATED",
		Validated:        "VALIDATED",
		Queued:           "QUEUED",
		Assigned:         "ASSIGNED",
		MissionSubmitted: "MISSION_SUBMITTED",
		Launched:         "LAUNCHED",
		Enroute:          "ENROUTE",
		Arrived:          "ARRIVED",
		Delivering:       "DELIVERING",
		Delivered:        "DELIVERED",
		Canceled:         "CANCELED",
		Failed:           "FAILED",
		Aborted:          "ABORTED",
	}
}

// getTransitionGraph maps every status to its allowed successors. Terminal
// statuses map to the empty set and are absorbing.
func getTransitionGraph() map[Status][]Status {
	return map[Status][]Status{
		Created:          {Validated, Canceled},
		Validated:        {Queued, Canceled},
		Queued:           {Assigned, Canceled},
		Assigned:         {MissionSubmitted, Canceled},
		MissionSubmitted: {Launched, Failed, Aborted},
		Launched:         {Enroute, Failed, Aborted},
		Enroute:          {Arrived, Failed, Aborted},
		Arrived:          {Delivering, Failed, Aborted},
		Delivering:       {Delivered, Failed, Aborted},
		Delivered:        {},
		Canceled:         {},
		Failed:           {},
		Aborted:          {},
	}
}

// StatusFromString restores a Status from its canonical name, as stored in
// the database and carried on the wire.
func StatusFromString(value string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == value {
			return status, nil
		}
	}
	return Unknown, errs.NewInvalidInputError(fmt.Sprintf("%q is not a valid order status", value))
}

// Validate checks if the Status value is a defined, non-Unknown status.
func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewInvalidInputError("status is invalid: 0 is not a valid status")
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewInvalidInputError(fmt.Sprintf("status is invalid: %d is not a valid status", int(s)))
	}
	return nil
}

// String returns the canonical uppercase name of the status.
// Invalid values render as "UNKNOWN".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// EventType returns the delivery event type label recorded when an order
// enters this status. Event type names are the status names verbatim.
func (s Status) EventType() string {
	return s.String()
}

/// IsTerminal reports whether the status absorbs: no transition may leave it.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Canceled || s == Failed || s == Aborted
}

// IsDispatchable reports whether an order in this status may enter a
// dispatch run.
func (s Status) IsDispatchable() bool {
	return s == Created || s == Validated || s == Queued
}

// CanTransitionTo validates the transition from s to next against the
// transition graph. A no-op transition (next == s) is always permitted.
// Any other pair missing from the graph fails with a Conflict naming the
// illegal transition; callers surface this to clients, never auto-correct.
func (s Status) CanTransitionTo(next Status) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if next == s {
		return nil
	}

	for _, allowed := range getTransitionGraph()[s] {
		if allowed == next {
			return nil
		}
	}

	return errs.NewConflictError(fmt.Sprintf("Invalid state transition: %s -> %s", s, next))
}
