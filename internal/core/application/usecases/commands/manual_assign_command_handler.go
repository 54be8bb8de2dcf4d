package commands

import (
	"context"

	"dronedelivery/internal/core/domain/model/drone"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/core/domain/services"
	"dronedelivery/internal/core/ports"
	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/metrics"
)

// ErrDroneNotFound is surfaced when the requested drone does not appear in
// the fleet's latest telemetry snapshot.
var ErrDroneNotFound = errs.NewInvalidInputError("Drone not found")

// ManualAssignCommandHandler assigns an operator-chosen drone to an order.
// The drone must exist in the current fleet snapshot and pass every
// eligibility rule; the order must be dispatchable.
type ManualAssignCommandHandler struct {
	uowFactory  DispatchUoWFactory
	fleetClient ports.FleetClient
	engine      services.DispatchEngine
}

// NewManualAssignCommandHandler creates a handler for manual assignments.
func NewManualAssignCommandHandler(
	uowFactory DispatchUoWFactory,
	fleetClient ports.FleetClient,
	engine services.DispatchEngine,
) ManualAssignCommandHandler {
	return ManualAssignCommandHandler{
		uowFactory:  uowFactory,
		fleetClient: fleetClient,
		engine:      engine,
	}
}

// Handle processes the manual assignment command.
func (h ManualAssignCommandHandler) Handle(ctx context.Context, command ManualAssignCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	from := aggregate.Status()
	traversed, err := h.engine.PrepareForAssignment(aggregate)
	if err != nil {
		return err
	}

	selected, err := h.findDrone(ctx, command.DroneID())
	if err != nil {
		return err
	}
	if reason := h.engine.IncompatibilityReason(aggregate, selected); reason != "" {
		return errs.NewInvalidInputError(reason)
	}

	events := uow.EventRepository()
	for _, status := range traversed {
		err = appendStatusEvent(ctx, events, aggregate.ID(), from, status, transitionMessage(status), nil)
		if err != nil {
			return err
		}
		from = status
	}

	newJob, err := h.engine.Assign(aggregate, selected.DroneID())
	if err != nil {
		return err
	}

	err = appendStatusEvent(
		ctx, events, aggregate.ID(), from, order.Assigned, msgOrderAssigned,
		map[string]any{"drone_id": selected.DroneID(), "reason": "manual"},
	)
	if err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}
	if err = uow.JobRepository().Add(ctx, newJob); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	metrics.OrdersAssignedTotal.WithLabelValues("manual").Inc()
	return nil
}

// findDrone locates the requested drone in the latest telemetry snapshot.
func (h ManualAssignCommandHandler) findDrone(ctx context.Context, droneID string) (drone.Telemetry, error) {
	fleet, err := h.fleetClient.GetLatestTelemetry(ctx)
	if err != nil {
		return drone.Telemetry{}, err
	}

	for _, d := range fleet {
		if d.DroneID() == droneID {
			return d, nil
		}
	}
	return drone.Telemetry{}, ErrDroneNotFound
}
