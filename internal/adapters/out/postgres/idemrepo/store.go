// Package idemrepo is the database-backed idempotency store. A unique index
// over (actor, route, idempotency_key) makes the first insert of a scope win
// races across API instances; losers read back the winner's record.
package idemrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/idempotency"
)

// RecordDTO represents the database structure for idempotency records.
type RecordDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Actor          string    `gorm:"size:128;uniqueIndex:uq_idem_scope_key"`
	Route          string    `gorm:"size:255;uniqueIndex:uq_idem_scope_key"`
	IdempotencyKey string    `gorm:"size:255;uniqueIndex:uq_idem_scope_key"`
	RequestHash    string    `gorm:"size:64"`
	ResponseStatus int
	ResponseBody   []byte    `gorm:"type:jsonb"`
	ExpiresAt      time.Time `gorm:"index"`
	CreatedAt      time.Time
}

// TableName overrides GORM's default naming convention.
func (RecordDTO) TableName() string {
	return "idempotency_records"
}

// GormStore implements idempotency.Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed idempotency store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get implements idempotency.Store.
func (s *GormStore) Get(ctx context.Context, scope idempotency.Scope) (*idempotency.Record, error) {
	var dto RecordDTO
	err := s.db.WithContext(ctx).
		Where("actor = ? AND route = ? AND idempotency_key = ?", scope.Actor, scope.Route, scope.Key).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("idempotency scope", scope.Key)
		}
		return nil, err
	}

	record := toRecord(dto)
	return &record, nil
}

// Insert implements idempotency.Store. The unique scope index arbitrates
// concurrent first uses: on a duplicate-key failure the stored record is
// fetched and returned as the authoritative one.
func (s *GormStore) Insert(ctx context.Context, record idempotency.Record) (*idempotency.Record, error) {
	dto := fromRecord(record)
	err := s.db.WithContext(ctx).Create(&dto).Error
	if err == nil {
		return nil, nil
	}
	if !isDuplicateKey(err) {
		return nil, err
	}

	existing, getErr := s.Get(ctx, record.Scope)
	if getErr != nil {
		return nil, getErr
	}
	return existing, nil
}

// Update implements idempotency.Store.
func (s *GormStore) Update(ctx context.Context, record idempotency.Record) error {
	result := s.db.WithContext(ctx).
		Model(&RecordDTO{}).
		Where("actor = ? AND route = ? AND idempotency_key = ?",
			record.Scope.Actor, record.Scope.Route, record.Scope.Key).
		Updates(map[string]any{
			"request_hash":    record.RequestHash,
			"response_status": record.ResponseStatus,
			"response_body":   record.ResponseBody,
			"expires_at":      record.ExpiresAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("idempotency scope", record.Scope.Key)
	}
	return nil
}

// DeleteExpired implements idempotency.Store.
func (s *GormStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", before).
		Delete(&RecordDTO{})
	return result.RowsAffected, result.Error
}

func fromRecord(record idempotency.Record) RecordDTO {
	return RecordDTO{
		ID:             uuid.New(),
		Actor:          record.Scope.Actor,
		Route:          record.Scope.Route,
		IdempotencyKey: record.Scope.Key,
		RequestHash:    record.RequestHash,
		ResponseStatus: record.ResponseStatus,
		ResponseBody:   record.ResponseBody,
		ExpiresAt:      record.ExpiresAt,
	}
}

func toRecord(dto RecordDTO) idempotency.Record {
	return idempotency.Record{
		Scope: idempotency.Scope{
			Actor: dto.Actor,
			Route: dto.Route,
			Key:   dto.IdempotencyKey,
		},
		RequestHash:    dto.RequestHash,
		ResponseStatus: dto.ResponseStatus,
		ResponseBody:   dto.ResponseBody,
		ExpiresAt:      dto.ExpiresAt,
	}
}

// isDuplicateKey detects unique-constraint violations across the drivers
// gorm may surface them through.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "SQLSTATE 23505")
}
