package commands

import (
	"context"
	"errors"

	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/pkg/errs"
)

// TransitionOrderCommandHandler advances an order through its lifecycle and
// keeps the delivery job consistent: DELIVERED completes the active job,
// FAILED and ABORTED fail it. Each transition appends an audit event carrying
// the traversed from/to pair.
type TransitionOrderCommandHandler struct {
	uowFactory DispatchUoWFactory
}

// NewTransitionOrderCommandHandler creates a handler for lifecycle
// transitions.
func NewTransitionOrderCommandHandler(uowFactory DispatchUoWFactory) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{uowFactory: uowFactory}
}

// Handle processes the transition command. A transition to the order's
// current status is a permitted no-op that records nothing.
func (h TransitionOrderCommandHandler) Handle(ctx context.Context, command TransitionOrderCommand) error {
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
	if err = aggregate.TransitionTo(command.Next()); err != nil {
		return err
	}
	if from == command.Next() {
		return uow.Commit(ctx)
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	err = appendStatusEvent(
		ctx, uow.EventRepository(), aggregate.ID(),
		from, command.Next(), msgStatusUpdated, nil,
	)
	if err != nil {
		return err
	}

	if err = h.settleJob(ctx, uow, command); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// settleJob finishes the order's active delivery job when the order reached a
// flight-terminal status. Orders without an active job (canceled before
// assignment, legacy data) settle nothing.
func (h TransitionOrderCommandHandler) settleJob(
	ctx context.Context,
	uow DispatchUoW,
	command TransitionOrderCommand,
) error {
	switch command.Next() {
	case order.Delivered, order.Failed, order.Aborted:
	default:
		return nil
	}

	jobRepo := uow.JobRepository()
	activeJob, err := jobRepo.GetActiveByOrderID(ctx, command.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if command.Next() == order.Delivered {
		err = activeJob.Complete()
	} else {
		err = activeJob.Fail()
	}
	if err != nil {
		return err
	}

	return jobRepo.Update(ctx, activeJob)
}
