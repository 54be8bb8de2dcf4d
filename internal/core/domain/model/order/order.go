package order

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through NewOrder or RestoreOrder. This ensures all orders are validated.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

const trackingIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// trackingIDLength is the length of public tracking identifiers.
const trackingIDLength = 10

// Order is the aggregate root for a delivery order. It owns the order's
// status exclusively: status changes only through TransitionTo, which
// validates against the state machine, so an Order can never hold an
// unreachable status.
//
// Invariants:
//   - valid identity, pickup and dropoff points
//   - payload weight greater than zero, payload type non-empty
//   - terminal statuses (DELIVERED, CANCELED, FAILED, ABORTED) are absorbing
type Order struct {
	id               kernel.UUID
	publicTrackingID string
	customerName     string
	customerPhone    string
	pickup           kernel.GeoPoint
	dropoff          kernel.GeoPoint
	dropoffAccuracyM *float64
	payloadWeightKg  float64
	payloadType      string
	priority         Priority
	status           Status
	createdAt        time.Time
	updatedAt        time.Time

	isConstructed bool
}

// NewTrackingID generates a public tracking identifier of 10 characters from
// the uppercase alphanumeric alphabet.
func NewTrackingID() (string, error) {
	id := make([]byte, trackingIDLength)
	alphabetSize := big.NewInt(int64(len(trackingIDAlphabet)))
	for i := range id {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate tracking id: %w", err)
		}
		id[i] = trackingIDAlphabet[n.Int64()]
	}
	return string(id), nil
}

// NewOrder creates a new Order in the CREATED status with validation.
// This is the only way to create a valid new Order.
func NewOrder(
	id kernel.UUID,
	publicTrackingID string,
	customerName string,
	customerPhone string,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	dropoffAccuracyM *float64,
	payloadWeightKg float64,
	payloadType string,
	priority Priority,
) (*Order, error) {
	now := time.Now().UTC()
	order := &Order{
		publicTrackingID: publicTrackingID,
		customerName:     customerName,
		customerPhone:    customerPhone,
		dropoffAccuracyM: dropoffAccuracyM,
		status:           Created,
		createdAt:        now,
		updatedAt:        now,
		isConstructed:    true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setTrackingID(publicTrackingID),
		order.setPickup(pickup),
		order.setDropoff(dropoff),
		order.setPayload(payloadWeightKg, payloadType),
		order.setPriority(priority),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder reconstructs an Order from persistence without running the
// creation defaults. The stored status is trusted but must be a defined one.
func RestoreOrder(
	id kernel.UUID,
	publicTrackingID string,
	customerName string,
	customerPhone string,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	dropoffAccuracyM *float64,
	payloadWeightKg float64,
	payloadType string,
	priority Priority,
	status Status,
	createdAt time.Time,
	updatedAt time.Time,
) (*Order, error) {
	order := &Order{
		publicTrackingID: publicTrackingID,
		customerName:     customerName,
		customerPhone:    customerPhone,
		dropoffAccuracyM: dropoffAccuracyM,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
		isConstructed:    true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setTrackingID(publicTrackingID),
		order.setPickup(pickup),
		order.setDropoff(dropoff),
		order.setPayload(payloadWeightKg, payloadType),
		order.setPriority(priority),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	order.status = status
	return order, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// PublicTrackingID returns the customer-facing tracking identifier.
func (o *Order) PublicTrackingID() string {
	return o.publicTrackingID
}

// CustomerName returns the optional customer name.
func (o *Order) CustomerName() string {
	return o.customerName
}

// CustomerPhone returns the optional customer phone number.
func (o *Order) CustomerPhone() string {
	return o.customerPhone
}

// Pickup returns the pickup coordinates.
func (o *Order) Pickup() kernel.GeoPoint {
	return o.pickup
}

// Dropoff returns the dropoff coordinates.
func (o *Order) Dropoff() kernel.GeoPoint {
	return o.dropoff
}

// DropoffAccuracyM returns the optional dropoff accuracy in meters.
func (o *Order) DropoffAccuracyM() *float64 {
	return o.dropoffAccuracyM
}

// PayloadWeightKg returns the payload weight in kilograms.
func (o *Order) PayloadWeightKg() float64 {
	return o.payloadWeightKg
}

// PayloadType returns the payload type label (e.g. "MEDICAL", "FOOD").
func (o *Order) PayloadType() string {
	return o.payloadType
}

// Priority returns the order priority.
func (o *Order) Priority() Priority {
	return o.priority
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the last mutation timestamp.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// TransitionTo advances the order to next after validating the transition
// against the state machine. A transition to the current status is a
// permitted no-op that leaves the aggregate untouched. Illegal transitions
// fail with a Conflict naming the current -> next pair.
func (o *Order) TransitionTo(next Status) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := o.status.CanTransitionTo(next); err != nil {
		return err
	}
	if next == o.status {
		return nil
	}

	o.status = next
	o.updatedAt = time.Now().UTC()
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setTrackingID(trackingID string) error {
	if trackingID == "" {
		return errs.NewInvalidInputError("public tracking id is required")
	}
	o.publicTrackingID = trackingID
	return nil
}

func (o *Order) setPickup(pickup kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return err
	}
	o.pickup = pickup
	return nil
}

func (o *Order) setDropoff(dropoff kernel.GeoPoint) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}
	o.dropoff = dropoff
	return nil
}

func (o *Order) setPayload(weightKg float64, payloadType string) error {
	if weightKg <= 0 {
		return errs.NewInvalidInputError(fmt.Sprintf("payload weight %v is not greater than 0", weightKg))
	}
	if payloadType == "" {
		return errs.NewInvalidInputError("payload type is required")
	}
	o.payloadWeightKg = weightKg
	o.payloadType = payloadType
	return nil
}

func (o *Order) setPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	o.priority = priority
	return nil
}
