// Package job contains the DeliveryJob aggregate: the assignment record
// linking an order to the drone executing it. An order has at most one
// non-terminal DeliveryJob at any time; the dispatch engine enforces this
// when creating assignments.
package job

import (
	"errors"
	"fmt"
	"time"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
)

// ErrJobIsNotConstructed is returned when a DeliveryJob was not created via
// NewDeliveryJob or RestoreDeliveryJob.
var ErrJobIsNotConstructed = errors.New("DeliveryJob must be created via NewDeliveryJob or RestoreDeliveryJob")

// Status represents the lifecycle state of a delivery job.
type Status string

const (
	// StatusPending marks a job created but not yet activated.
	StatusPending Status = "PENDING"
	// StatusActive marks the single in-flight assignment of an order.
	StatusActive Status = "ACTIVE"
	// StatusCompleted marks a successfully finished job. Terminal.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed marks a failed or aborted job. Terminal.
	StatusFailed Status = "FAILED"
)

// Validate checks that the status is one of the defined values.
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusFailed:
		return nil
	default:
		return errs.NewInvalidInputError(fmt.Sprintf("%q is not a valid delivery job status", string(s)))
	}
}

// IsTerminal reports whether the job status permits no further change.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DeliveryJob records the assignment of a drone to an order. It is created
// by the dispatch engine in ACTIVE status and referenced (not owned) by the
// order through its order identifier.
type DeliveryJob struct {
	id              kernel.UUID
	orderID         kernel.UUID
	assignedDroneID string
	missionIntentID string
	etaSeconds      *int
	status          Status
	createdAt       time.Time

	isConstructed bool
}

// NewDeliveryJob creates the active assignment of droneID to orderID.
func NewDeliveryJob(id kernel.UUID, orderID kernel.UUID, droneID string) (*DeliveryJob, error) {
	if err := errors.Join(id.Validate(), orderID.Validate()); err != nil {
		return nil, err
	}
	if droneID == "" {
		return nil, errs.NewInvalidInputError("assigned drone id is required")
	}

	return &DeliveryJob{
		id:              id,
		orderID:         orderID,
		assignedDroneID: droneID,
		status:          StatusActive,
		createdAt:       time.Now().UTC(),
		isConstructed:   true,
	}, nil
}

// RestoreDeliveryJob reconstructs a DeliveryJob from persistence.
func RestoreDeliveryJob(
	id kernel.UUID,
	orderID kernel.UUID,
	assignedDroneID string,
	missionIntentID string,
	etaSeconds *int,
	status Status,
	createdAt time.Time,
) (*DeliveryJob, error) {
	if err := errors.Join(id.Validate(), orderID.Validate(), status.Validate()); err != nil {
		return nil, err
	}

	return &DeliveryJob{
		id:              id,
		orderID:         orderID,
		assignedDroneID: assignedDroneID,
		missionIntentID: missionIntentID,
		etaSeconds:      etaSeconds,
		status:          status,
		createdAt:       createdAt,
		isConstructed:   true,
	}, nil
}

// Validate ensures the job was properly constructed.
func (j *DeliveryJob) Validate() error {
	if j == nil || !j.isConstructed {
		return ErrJobIsNotConstructed
	}
	return nil
}

// ID returns the job identifier.
func (j *DeliveryJob) ID() kernel.UUID {
	return j.id
}

// OrderID returns the identifier of the order this job fulfills.
func (j *DeliveryJob) OrderID() kernel.UUID {
	return j.orderID
}

// AssignedDroneID returns the drone executing the job.
func (j *DeliveryJob) AssignedDroneID() string {
	return j.assignedDroneID
}

// MissionIntentID returns the mission intent identifier, or "" when no
// mission has been submitted yet.
func (j *DeliveryJob) MissionIntentID() string {
	return j.missionIntentID
}

// EtaSeconds returns the optional estimated time of arrival.
func (j *DeliveryJob) EtaSeconds() *int {
	return j.etaSeconds
}

// Status returns the job status.
func (j *DeliveryJob) Status() Status {
	return j.status
}

// CreatedAt returns the creation timestamp.
func (j *DeliveryJob) CreatedAt() time.Time {
	return j.createdAt
}

// AttachMissionIntent records the identifier of the submitted mission intent.
// Only an ACTIVE job can receive a mission intent.
func (j *DeliveryJob) AttachMissionIntent(intentID string) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if intentID == "" {
		return errs.NewInvalidInputError("mission intent id is required")
	}
	if j.status != StatusActive {
		return errs.NewConflictError(
			fmt.Sprintf("mission intent requires an ACTIVE job, got %s", j.status))
	}

	j.missionIntentID = intentID
	return nil
}

// Complete marks the job finished.
func (j *DeliveryJob) Complete() error {
	return j.finish(StatusCompleted)
}

// Fail marks the job failed.
func (j *DeliveryJob) Fail() error {
	return j.finish(StatusFailed)
}

func (j *DeliveryJob) finish(terminal Status) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if j.status.IsTerminal() {
		return errs.NewConflictError(
			fmt.Sprintf("delivery job already finished with status %s", j.status))
	}

	j.status = terminal
	return nil
}
