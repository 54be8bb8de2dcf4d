package order

import (
	"fmt"

	"dronedelivery/internal/pkg/errs"
)

// Priority classifies how urgently an order must be delivered.
type Priority string

const (
	// PriorityNormal is the default priority.
	PriorityNormal Priority = "NORMAL"
	// PriorityUrgent marks time-critical commercial deliveries.
	PriorityUrgent Priority = "URGENT"
	// PriorityMedical marks medical payloads.
	PriorityMedical Priority = "MEDICAL"
)

// Validate checks that the priority is one of the defined values.
func (p Priority) Validate() error {
	switch p {
	case PriorityNormal, PriorityUrgent, PriorityMedical:
		return nil
	default:
		return errs.NewInvalidInputError(fmt.Sprintf("%q is not a valid priority", string(p)))
	}
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	return string(p)
}
