// Package pod contains the proof-of-delivery record attached to a delivered
// order. A proof carries exactly one confirmation method; OTP codes are never
// stored in clear, only their keyed hash.
package pod

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
)

// Method identifies how the delivery was confirmed.
type Method string

const (
	// MethodPhoto confirms delivery with a photo of the drop site.
	MethodPhoto Method = "PHOTO"
	// MethodOTP confirms delivery with a one-time code handed to the recipient.
	MethodOTP Method = "OTP"
	// MethodOperatorConfirm confirms delivery by a named operator.
	MethodOperatorConfirm Method = "OPERATOR_CONFIRM"
)

// Validate checks that the method is one of the defined values.
func (m Method) Validate() error {
	switch m {
	case MethodPhoto, MethodOTP, MethodOperatorConfirm:
		return nil
	default:
		return errs.NewInvalidInputError(
			fmt.Sprintf("%q is not a valid proof of delivery method", string(m)))
	}
}

// ErrProofIsNotConstructed is returned when a ProofOfDelivery was not created
// via NewProofOfDelivery or RestoreProofOfDelivery.
var ErrProofIsNotConstructed = errors.New("ProofOfDelivery must be created via NewProofOfDelivery or RestoreProofOfDelivery")

// ProofOfDelivery records a single delivery confirmation for an order.
type ProofOfDelivery struct {
	id          kernel.UUID
	orderID     kernel.UUID
	method      Method
	photoURL    string
	otpHash     string
	confirmedBy string
	notes       string
	metadata    map[string]any
	createdAt   time.Time

	isConstructed bool
}

// OTPHash returns the lowercase hex HMAC-SHA256 of the OTP code under the
// given secret.
func OTPHash(secret, otpCode string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(otpCode))
	return hex.EncodeToString(mac.Sum(nil))
}

// NewProofOfDelivery creates a confirmation for the order. Each method has a
// required field: PHOTO needs photoURL, OTP needs otpCode (stored as a keyed
// hash under otpSecret), OPERATOR_CONFIRM needs confirmedBy. The caller is
// responsible for verifying the order is DELIVERED.
func NewProofOfDelivery(
	orderID kernel.UUID,
	method Method,
	photoURL string,
	otpCode string,
	otpSecret string,
	confirmedBy string,
	notes string,
	metadata map[string]any,
) (*ProofOfDelivery, error) {
	if err := errors.Join(orderID.Validate(), method.Validate()); err != nil {
		return nil, err
	}

	switch method {
	case MethodPhoto:
		if photoURL == "" {
			return nil, errs.NewInvalidInputError("photo_url is required")
		}
	case MethodOTP:
		if otpCode == "" {
			return nil, errs.NewInvalidInputError("otp_code is required")
		}
	case MethodOperatorConfirm:
		if confirmedBy == "" {
			return nil, errs.NewInvalidInputError("confirmed_by is required")
		}
	}

	var otpHash string
	if otpCode != "" {
		otpHash = OTPHash(otpSecret, otpCode)
	}

	return &ProofOfDelivery{
		id:            kernel.NewUUID(),
		orderID:       orderID,
		method:        method,
		photoURL:      photoURL,
		otpHash:       otpHash,
		confirmedBy:   confirmedBy,
		notes:         notes,
		metadata:      metadata,
		createdAt:     time.Now().UTC(),
		isConstructed: true,
	}, nil
}

// RestoreProofOfDelivery reconstructs a ProofOfDelivery from persistence.
func RestoreProofOfDelivery(
	id kernel.UUID,
	orderID kernel.UUID,
	method Method,
	photoURL string,
	otpHash string,
	confirmedBy string,
	notes string,
	metadata map[string]any,
	createdAt time.Time,
) (*ProofOfDelivery, error) {
	if err := errors.Join(id.Validate(), orderID.Validate(), method.Validate()); err != nil {
		return nil, err
	}

	return &ProofOfDelivery{
		id:            id,
		orderID:       orderID,
		method:        method,
		photoURL:      photoURL,
		otpHash:       otpHash,
		confirmedBy:   confirmedBy,
		notes:         notes,
		metadata:      metadata,
		createdAt:     createdAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the proof was properly constructed.
func (p *ProofOfDelivery) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrProofIsNotConstructed
	}
	return nil
}

// ID returns the proof identifier.
func (p *ProofOfDelivery) ID() kernel.UUID {
	return p.id
}

// OrderID returns the identifier of the confirmed order.
func (p *ProofOfDelivery) OrderID() kernel.UUID {
	return p.orderID
}

// Method returns the confirmation method.
func (p *ProofOfDelivery) Method() Method {
	return p.method
}

// PhotoURL returns the drop-site photo URL, or "" for non-photo proofs.
func (p *ProofOfDelivery) PhotoURL() string {
	return p.photoURL
}

// OTPHash returns the keyed hash of the OTP code, or "" when none was given.
func (p *ProofOfDelivery) OTPHash() string {
	return p.otpHash
}

// ConfirmedBy returns the confirming operator, or "".
func (p *ProofOfDelivery) ConfirmedBy() string {
	return p.confirmedBy
}

// Notes returns the free-form notes, or "".
func (p *ProofOfDelivery) Notes() string {
	return p.notes
}

// Metadata returns the machine-readable proof context, or nil.
func (p *ProofOfDelivery) Metadata() map[string]any {
	return p.metadata
}

// CreatedAt returns the confirmation timestamp.
func (p *ProofOfDelivery) CreatedAt() time.Time {
	return p.createdAt
}

// MatchesOTP reports whether the given code hashes to the stored OTP hash
// under the secret, using a constant-time comparison.
func (p *ProofOfDelivery) MatchesOTP(secret, otpCode string) bool {
	if p.otpHash == "" {
		return false
	}
	return hmac.Equal([]byte(p.otpHash), []byte(OTPHash(secret, otpCode)))
}
