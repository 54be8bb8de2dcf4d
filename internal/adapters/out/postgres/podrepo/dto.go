// Package podrepo persists proof-of-delivery records.
package podrepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/pod"
	"dronedelivery/internal/pkg/errs"
)

// PodDTO represents the database structure for proof-of-delivery records.
type PodDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;index"`
	Method      string    `gorm:"size:32"`
	PhotoURL    string    `gorm:"size:1024"`
	OtpHash     string    `gorm:"size:255"`
	ConfirmedBy string    `gorm:"size:255"`
	Notes       string    `gorm:"type:text"`
	Metadata    []byte    `gorm:"type:jsonb"`
	CreatedAt   time.Time
}

// TableName overrides GORM's default naming convention.
func (PodDTO) TableName() string {
	return "proof_of_deliveries"
}

func fromDomain(proof *pod.ProofOfDelivery) (PodDTO, error) {
	var metadata []byte
	if proof.Metadata() != nil {
		raw, err := json.Marshal(proof.Metadata())
		if err != nil {
			return PodDTO{}, errs.NewInvalidInputErrorWithCause("proof metadata cannot be serialized", err)
		}
		metadata = raw
	}

	return PodDTO{
		ID:          proof.ID().Bytes(),
		OrderID:     proof.OrderID().Bytes(),
		Method:      string(proof.Method()),
		PhotoURL:    proof.PhotoURL(),
		OtpHash:     proof.OTPHash(),
		ConfirmedBy: proof.ConfirmedBy(),
		Notes:       proof.Notes(),
		Metadata:    metadata,
		CreatedAt:   proof.CreatedAt(),
	}, nil
}

func toDomain(dto PodDTO) (*pod.ProofOfDelivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	var metadata map[string]any
	if len(dto.Metadata) > 0 {
		if err := json.Unmarshal(dto.Metadata, &metadata); err != nil {
			return nil, errs.NewInvalidInputErrorWithCause("stored proof metadata is corrupt", err)
		}
	}

	return pod.RestoreProofOfDelivery(
		id,
		orderID,
		pod.Method(dto.Method),
		dto.PhotoURL,
		dto.OtpHash,
		dto.ConfirmedBy,
		dto.Notes,
		metadata,
		dto.CreatedAt,
	)
}
