package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classify failures for errors.Is checks. Every concrete
// error type in this package unwraps to exactly one of them.
var (
	// ErrInvalidInput marks malformed request data. Not retryable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict marks an operation rejected by current state: an illegal
	// status transition, an idempotency payload mismatch, an order that is
	// not dispatchable. Retrying without changing intent cannot succeed.
	ErrConflict = errors.New("conflict")

	// ErrObjectNotFound marks a missing aggregate or record.
	ErrObjectNotFound = errors.New("object not found")

	// ErrUnavailable marks an integration or backend failure, including
	// timeouts. Retryable by policy at the integration boundary.
	ErrUnavailable = errors.New("unavailable")

	// ErrProtocol marks a malformed or unsupported reply from a remote
	// backend. Fatal for the call that observed it.
	ErrProtocol = errors.New("protocol error")
)

func sanitize(value string) string {
	return strings.ReplaceAll(strings.ReplaceAll(value, "\n", " "), "\r", " ")
}

func withCause(base string, cause error) string {
	if cause == nil {
		return base
	}
	return fmt.Sprintf("%s (cause: %s)", base, sanitize(cause.Error()))
}

// InvalidInputError reports malformed request data with a caller-facing message.
type InvalidInputError struct {
	Message string
	Cause   error
}

// NewInvalidInputError creates an InvalidInputError without a cause.
func NewInvalidInputError(message string) *InvalidInputError {
	return &InvalidInputError{Message: message}
}

// NewInvalidInputErrorWithCause creates an InvalidInputError wrapping a cause.
func NewInvalidInputErrorWithCause(message string, cause error) *InvalidInputError {
	return &InvalidInputError{Message: message, Cause: cause}
}

func (e *InvalidInputError) Error() string {
	return withCause(fmt.Sprintf("invalid input: %s", sanitize(e.Message)), e.Cause)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// ConflictError reports an operation rejected by current state. Message names
// the specific violated rule; it never carries another request's payload.
type ConflictError struct {
	Message string
	Cause   error
}

// NewConflictError creates a ConflictError without a cause.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// NewConflictErrorWithCause creates a ConflictError wrapping a cause.
func NewConflictErrorWithCause(message string, cause error) *ConflictError {
	return &ConflictError{Message: message, Cause: cause}
}

func (e *ConflictError) Error() string {
	return withCause(fmt.Sprintf("conflict: %s", sanitize(e.Message)), e.Cause)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// ObjectNotFoundError reports a missing aggregate or record by parameter name
// and identifier.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError without a cause.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

// NewObjectNotFoundErrorWithCause creates an ObjectNotFoundError wrapping a cause.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	return withCause(fmt.Sprintf("object not found: %s is: %v", sanitize(e.ParamName), e.ID), e.Cause)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// UnavailableError reports an integration or backend failure attributed to a
// named upstream service.
type UnavailableError struct {
	Service string
	Message string
	Cause   error
}

// NewUnavailableError creates an UnavailableError without a cause.
func NewUnavailableError(service string, message string) *UnavailableError {
	return &UnavailableError{Service: service, Message: message}
}

// NewUnavailableErrorWithCause creates an UnavailableError wrapping a cause.
func NewUnavailableErrorWithCause(service string, message string, cause error) *UnavailableError {
	return &UnavailableError{Service: service, Message: message, Cause: cause}
}

func (e *UnavailableError) Error() string {
	return withCause(fmt.Sprintf("%s unavailable: %s", sanitize(e.Service), sanitize(e.Message)), e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// ProtocolError reports a malformed or unsupported remote reply.
type ProtocolError struct {
	Message string
	Cause   error
}

// NewProtocolError creates a ProtocolError without a cause.
func NewProtocolError(message string) *ProtocolError {
	return &ProtocolError{Message: message}
}

// NewProtocolErrorWithCause creates a ProtocolError wrapping a cause.
func NewProtocolErrorWithCause(message string, cause error) *ProtocolError {
	return &ProtocolError{Message: message, Cause: cause}
}

func (e *ProtocolError) Error() string {
	return withCause(fmt.Sprintf("protocol error: %s", sanitize(e.Message)), e.Cause)
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}
