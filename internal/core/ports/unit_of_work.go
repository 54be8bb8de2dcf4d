package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request or
// command. This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary. It provides
// transaction control and repositories bound to the open transaction.
// Client code must explicitly manage the transaction lifecycle.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns an error if no transaction is active or the commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns an error if no transaction is active or the rollback fails.
	Rollback(ctx context.Context) error

	// OrderRepository returns an OrderRepository bound to the current
	// transaction started by Begin().
	OrderRepository() OrderRepository

	// JobRepository returns a JobRepository bound to the current transaction.
	JobRepository() JobRepository

	// EventRepository returns an EventRepository bound to the current
	// transaction.
	EventRepository() EventRepository

	// ProofOfDeliveryRepository returns a ProofOfDeliveryRepository bound to
	// the current transaction.
	ProofOfDeliveryRepository() ProofOfDeliveryRepository
}
