package commands

import (
	"errors"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/pod"
	"dronedelivery/internal/pkg/guard"
)

var ErrCreatePodCommandIsNotConstructed = errors.New(
	"CreatePodCommand must be created via NewCreatePodCommand constructor",
)

// CreatePodCommand requests the recording of a proof of delivery for an
// order. The method-specific required field (photo URL, OTP code or
// confirming operator) is enforced by the aggregate constructor.
type CreatePodCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	method      pod.Method
	photoURL    string
	otpCode     string
	confirmedBy string
	notes       string
	metadata    map[string]any

	guard guard.ConstructorGuard
}

// NewCreatePodCommand creates a validated proof-of-delivery request.
func NewCreatePodCommand(
	orderID kernel.UUID,
	method pod.Method,
	photoURL string,
	otpCode string,
	confirmedBy string,
	notes string,
	metadata map[string]any,
) (CreatePodCommand, error) {
	if err := errors.Join(orderID.Validate(), method.Validate()); err != nil {
		return CreatePodCommand{}, err
	}
	return CreatePodCommand{
		orderID:     orderID,
		method:      method,
		photoURL:    photoURL,
		otpCode:     otpCode,
		confirmedBy: confirmedBy,
		notes:       notes,
		metadata:    metadata,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreatePodCommand) Validate() error {
	return c.guard.Validate(ErrCreatePodCommandIsNotConstructed)
}

// OrderID returns the identifier of the delivered order.
func (c CreatePodCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Method returns the confirmation method.
func (c CreatePodCommand) Method() pod.Method {
	return c.method
}

// PhotoURL returns the photo URL for PHOTO proofs.
func (c CreatePodCommand) PhotoURL() string {
	return c.photoURL
}

// OTPCode returns the plaintext OTP code for OTP proofs. It is hashed before
// persistence and never stored.
func (c CreatePodCommand) OTPCode() string {
	return c.otpCode
}

// ConfirmedBy returns the confirming operator for OPERATOR_CONFIRM proofs.
func (c CreatePodCommand) ConfirmedBy() string {
	return c.confirmedBy
}

// Notes returns the optional free-form notes.
func (c CreatePodCommand) Notes() string {
	return c.notes
}

// Metadata returns the optional metadata document.
func (c CreatePodCommand) Metadata() map[string]any {
	return c.metadata
}
