package commands

import (
	"context"

	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/pkg/metrics"
)

// CreateOrderCommandHandler creates a new delivery order in CREATED status
// with a fresh public tracking identifier and the opening audit trail entry,
// both committed in one transaction.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order creation.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{uowFactory: uowFactory}
}

// Handle processes the order creation command.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, command CreateOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	trackingID, err := order.NewTrackingID()
	if err != nil {
		return err
	}

	newOrder, err := order.NewOrder(
		command.OrderID(), trackingID,
		command.CustomerName(), command.CustomerPhone(),
		command.Pickup(), command.Dropoff(), command.DropoffAccuracyM(),
		command.PayloadWeightKg(), command.PayloadType(), command.Priority(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return err
	}

	event, err := order.NewStatusEvent(newOrder.ID(), order.Created, msgOrderCreated, nil)
	if err != nil {
		return err
	}
	if err = uow.EventRepository().Add(ctx, event); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	metrics.OrdersCreatedTotal.Inc()
	return nil
}
