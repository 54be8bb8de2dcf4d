// Package commands contains the write operations of the delivery service.
// Every command follows the same shape: a constructor-guarded command object,
// a handler owning one unit of work per invocation, and explicit transaction
// management with rollback on every early return.
package commands

import (
	"context"

	"dronedelivery/internal/core/ports"
)

// Unit of Work interfaces narrow the full ports.UnitOfWork to the
// repositories a handler actually touches, keeping handler tests small.
type (
	// TxManager handles the database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// JobRepoFactory provides the delivery job repository within a
	// transaction.
	JobRepoFactory interface {
		JobRepository() ports.JobRepository
	}

	// EventRepoFactory provides the delivery event repository within a
	// transaction.
	EventRepoFactory interface {
		EventRepository() ports.EventRepository
	}

	// PodRepoFactory provides the proof-of-delivery repository within a
	// transaction.
	PodRepoFactory interface {
		ProofOfDeliveryRepository() ports.ProofOfDeliveryRepository
	}

	// OrderUoW manages transactions for order-and-audit-trail operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
		EventRepoFactory
	}

	// OrderUoWFactory creates order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// DispatchUoW manages transactions that touch orders, delivery jobs and
	// the audit trail together: assignment, mission submission, lifecycle
	// transitions with job side effects.
	DispatchUoW interface {
		TxManager
		OrderRepoFactory
		JobRepoFactory
		EventRepoFactory
	}

	// DispatchUoWFactory creates dispatch unit of work instances.
	DispatchUoWFactory interface {
		Create() DispatchUoW
	}

	// PodUoW manages transactions for proof-of-delivery creation.
	PodUoW interface {
		TxManager
		OrderRepoFactory
		PodRepoFactory
	}

	// PodUoWFactory creates proof-of-delivery unit of work instances.
	PodUoWFactory interface {
		Create() PodUoW
	}
)
