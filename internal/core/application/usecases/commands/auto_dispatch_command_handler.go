package commands

import (
	"context"
	"errors"

	"dronedelivery/internal/core/domain/model/drone"
	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/core/domain/services"
	"dronedelivery/internal/core/ports"
	"dronedelivery/internal/pkg/metrics"
)

// AutoDispatchCommandHandler runs the dispatch engine over the waiting
// orders. Each assignment commits in its own transaction: the order
// advancement, the new ACTIVE job and the audit events become visible
// together or not at all, and one failed order never blocks the rest of the
// run.
type AutoDispatchCommandHandler struct {
	uowFactory  DispatchUoWFactory
	fleetClient ports.FleetClient
	engine      services.DispatchEngine
}

// NewAutoDispatchCommandHandler creates a handler for dispatch runs.
func NewAutoDispatchCommandHandler(
	uowFactory DispatchUoWFactory,
	fleetClient ports.FleetClient,
	engine services.DispatchEngine,
) AutoDispatchCommandHandler {
	return AutoDispatchCommandHandler{
		uowFactory:  uowFactory,
		fleetClient: fleetClient,
		engine:      engine,
	}
}

// Handle executes one dispatch run and reports the committed assignments.
func (h AutoDispatchCommandHandler) Handle(
	ctx context.Context,
	command AutoDispatchCommand,
) (AutoDispatchResult, error) {
	if err := command.Validate(); err != nil {
		return AutoDispatchResult{}, err
	}

	fleet, err := h.fleetClient.GetLatestTelemetry(ctx)
	if err != nil {
		return AutoDispatchResult{}, err
	}

	waiting, err := h.dispatchableOrderIDs(ctx)
	if err != nil {
		return AutoDispatchResult{}, err
	}

	result := AutoDispatchResult{Examined: len(waiting)}
	used := make(map[string]bool)

	for _, orderID := range waiting {
		if len(result.Assignments) >= command.MaxAssignments() {
			break
		}

		assignment, err := h.assignOne(ctx, orderID, fleet, used)
		if errors.Is(err, services.ErrNoCompatibleDrone) {
			continue
		}
		if err != nil {
			return result, err
		}

		used[assignment.DroneID] = true
		result.Assignments = append(result.Assignments, assignment)
	}

	return result, nil
}

// dispatchableOrderIDs reads the identifiers of waiting orders, oldest first,
// in a short read-only transaction.
func (h AutoDispatchCommandHandler) dispatchableOrderIDs(ctx context.Context) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().GetDispatchable(ctx, 0)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
	}
	return ids, nil
}

// assignOne matches a single order with the best unused drone and commits the
// assignment. Returns services.ErrNoCompatibleDrone when nothing in the fleet
// can take the order.
func (h AutoDispatchCommandHandler) assignOne(
	ctx context.Context,
	orderID kernel.UUID,
	fleet []drone.Telemetry,
	used map[string]bool,
) (Assignment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return Assignment{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return Assignment{}, err
	}

	from := aggregate.Status()
	traversed, err := h.engine.PrepareForAssignment(aggregate)
	if err != nil {
		return Assignment{}, err
	}

	events := uow.EventRepository()
	for _, status := range traversed {
		err = appendStatusEvent(ctx, events, aggregate.ID(), from, status, transitionMessage(status), nil)
		if err != nil {
			return Assignment{}, err
		}
		from = status
	}

	selected, err := h.engine.SelectDrone(aggregate, fleet, used)
	if errors.Is(err, services.ErrNoCompatibleDrone) {
		// The order stays QUEUED; persist the advancement so the audit
		// trail shows it waiting for the next run.
		if len(traversed) > 0 {
			if updateErr := orderRepo.Update(ctx, aggregate); updateErr != nil {
				return Assignment{}, updateErr
			}
			if commitErr := uow.Commit(ctx); commitErr != nil {
				return Assignment{}, commitErr
			}
		}
		return Assignment{}, err
	}
	if err != nil {
		return Assignment{}, err
	}

	newJob, err := h.engine.Assign(aggregate, selected.DroneID())
	if err != nil {
		return Assignment{}, err
	}

	err = appendStatusEvent(
		ctx, events, aggregate.ID(), from, order.Assigned, msgOrderAssigned,
		map[string]any{"drone_id": selected.DroneID(), "reason": "auto"},
	)
	if err != nil {
		return Assignment{}, err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return Assignment{}, err
	}
	if err = uow.JobRepository().Add(ctx, newJob); err != nil {
		return Assignment{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return Assignment{}, err
	}

	metrics.OrdersAssignedTotal.WithLabelValues("auto").Inc()
	return Assignment{
		OrderID: aggregate.ID().String(),
		DroneID: selected.DroneID(),
		JobID:   newJob.ID().String(),
	}, nil
}
