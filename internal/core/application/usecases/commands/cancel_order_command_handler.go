package commands

import (
	"context"

	"dronedelivery/internal/core/domain/model/order"
)

// CancelOrderCommandHandler withdraws an order before launch. The operation
// is idempotent: a second cancel of the same order succeeds without touching
// the aggregate or the audit trail.
type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(uowFactory OrderUoWFactory) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{uowFactory: uowFactory}
}

// Handle processes the cancellation command.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, command CancelOrderCommand) error {
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

	if aggregate.Status() == order.Canceled {
		return uow.Commit(ctx)
	}

	from := aggregate.Status()
	if err = aggregate.TransitionTo(order.Canceled); err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	err = appendStatusEvent(
		ctx, uow.EventRepository(), aggregate.ID(),
		from, order.Canceled, msgOrderCanceled, nil,
	)
	if err != nil {
		return err
	}

	return uow.Commit(ctx)
}
