// Package postgres provides the GORM-based implementation of the Unit of
// Work pattern. A unit of work maintains the set of aggregates touched by a
// business transaction and coordinates writing them out atomically: either
// the order, its delivery job and its audit events all commit, or none do.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//
//	if err := uow.OrderRepository().Update(ctx, order); err != nil {
//	    uow.Rollback(ctx)
//	    return err
//	}
//	if err := uow.JobRepository().Add(ctx, job); err != nil {
//	    uow.Rollback(ctx)
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Each business operation gets its own instance; units of work are not safe
// for concurrent use.
package postgres

import (
	"context"

	"gorm.io/gorm"

	"dronedelivery/internal/adapters/out/postgres/eventrepo"
	"dronedelivery/internal/adapters/out/postgres/jobrepo"
	"dronedelivery/internal/adapters/out/postgres/orderrepo"
	"dronedelivery/internal/adapters/out/postgres/podrepo"
	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/ports"
)

// trackedAggregate records an aggregate modified during the unit of work,
// available after commit for event publishing.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one GORM
// connection pool. Each Create call yields a fresh instance so concurrent
// operations stay isolated.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory over the given database handle.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork ready for one business transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction across the order, job,
// event and proof-of-delivery repositories.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin starts the transaction. Calling Begin again on an open transaction
// is a no-op rather than a nested transaction.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}
	return nil
}

// Commit finalizes the transaction. The unit of work cannot be reused after.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. The unit of work cannot be reused after.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// handle returns the open transaction, or the main connection when no
// transaction is active.
func (uow *GormUnitOfWork) handle() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// OrderRepository returns an order repository bound to the current
// transaction.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.handle(), uow)
}

// JobRepository returns a delivery job repository bound to the current
// transaction.
func (uow *GormUnitOfWork) JobRepository() ports.JobRepository {
	return jobrepo.NewGormJobRepository(uow.handle(), uow)
}

// EventRepository returns a delivery event repository bound to the current
// transaction.
func (uow *GormUnitOfWork) EventRepository() ports.EventRepository {
	return eventrepo.NewGormEventRepository(uow.handle())
}

// ProofOfDeliveryRepository returns a proof-of-delivery repository bound to
// the current transaction.
func (uow *GormUnitOfWork) ProofOfDeliveryRepository() ports.ProofOfDeliveryRepository {
	return podrepo.NewGormPodRepository(uow.handle())
}

// TrackAggregate registers an aggregate as modified within this unit of
// work. Called by the repositories on Add and Update.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}
