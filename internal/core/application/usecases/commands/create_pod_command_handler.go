package commands

import (
	"context"

	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/core/domain/model/pod"
	"dronedelivery/internal/pkg/errs"
)

// CreatePodCommandHandler records a proof of delivery for a DELIVERED order.
// OTP codes are hashed with the configured secret before persistence.
type CreatePodCommandHandler struct {
	uowFactory PodUoWFactory
	otpSecret  string
}

// NewCreatePodCommandHandler creates a handler for proof-of-delivery
// recording.
func NewCreatePodCommandHandler(uowFactory PodUoWFactory, otpSecret string) CreatePodCommandHandler {
	return CreatePodCommandHandler{
		uowFactory: uowFactory,
		otpSecret:  otpSecret,
	}
}

// Handle processes the proof-of-delivery command.
func (h CreatePodCommandHandler) Handle(ctx context.Context, command CreatePodCommand) error {
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

	aggregate, err := uow.OrderRepository().Get(ctx, command.OrderID())
	if err != nil {
		return err
	}
	if aggregate.Status() != order.Delivered {
		return errs.NewConflictError("Proof of delivery can only be added for DELIVERED orders")
	}

	proof, err := pod.NewProofOfDelivery(
		command.OrderID(), command.Method(),
		command.PhotoURL(), command.OTPCode(), h.otpSecret,
		command.ConfirmedBy(), command.Notes(), command.Metadata(),
	)
	if err != nil {
		return err
	}

	if err = uow.ProofOfDeliveryRepository().Add(ctx, proof); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
