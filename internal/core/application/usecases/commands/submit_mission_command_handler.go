package commands

import (
	"context"
	"fmt"

	"dronedelivery/internal/core/domain/model/mission"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/core/ports"
	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/metrics"
)

// SubmitMissionCommandHandler builds the mission intent for an ASSIGNED
// order, publishes it to the GCS bridge and records the intent identifier on
// the active job. Publishing happens before the local commit: the intent id
// and the MISSION_SUBMITTED transition persist only after the bridge accepted
// the intent.
type SubmitMissionCommandHandler struct {
	uowFactory  DispatchUoWFactory
	publisher   ports.MissionPublisher
	constraints mission.Constraints
}

// NewSubmitMissionCommandHandler creates a handler for mission submissions.
// The constraints become part of every intent this handler builds.
func NewSubmitMissionCommandHandler(
	uowFactory DispatchUoWFactory,
	publisher ports.MissionPublisher,
	constraints mission.Constraints,
) SubmitMissionCommandHandler {
	return SubmitMissionCommandHandler{
		uowFactory:  uowFactory,
		publisher:   publisher,
		constraints: constraints,
	}
}

// Handle processes the mission submission command and returns the published
// intent.
func (h SubmitMissionCommandHandler) Handle(
	ctx context.Context,
	command SubmitMissionCommand,
) (mission.Intent, error) {
	if err := command.Validate(); err != nil {
		return mission.Intent{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return mission.Intent{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, command.OrderID())
	if err != nil {
		return mission.Intent{}, err
	}
	if aggregate.Status() != order.Assigned {
		return mission.Intent{}, errs.NewConflictError(
			fmt.Sprintf("Mission intent can only be submitted from %s", order.Assigned))
	}

	jobRepo := uow.JobRepository()
	activeJob, err := jobRepo.GetActiveByOrderID(ctx, command.OrderID())
	if err != nil {
		return mission.Intent{}, errs.NewConflictErrorWithCause(
			"No active delivery job found for order", err)
	}

	intent, err := mission.BuildIntent(aggregate, activeJob, h.constraints)
	if err != nil {
		return mission.Intent{}, err
	}

	if err = h.publisher.PublishIntent(ctx, intent); err != nil {
		return mission.Intent{}, err
	}

	if err = activeJob.AttachMissionIntent(intent.IntentID); err != nil {
		return mission.Intent{}, err
	}
	if err = jobRepo.Update(ctx, activeJob); err != nil {
		return mission.Intent{}, err
	}

	from := aggregate.Status()
	if err = aggregate.TransitionTo(order.MissionSubmitted); err != nil {
		return mission.Intent{}, err
	}
	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return mission.Intent{}, err
	}

	err = appendStatusEvent(
		ctx, uow.EventRepository(), aggregate.ID(),
		from, order.MissionSubmitted, msgMissionSubmitted,
		map[string]any{"mission_intent_id": intent.IntentID},
	)
	if err != nil {
		return mission.Intent{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return mission.Intent{}, err
	}

	metrics.MissionIntentsSubmittedTotal.Inc()
	return intent, nil
}
