// Package services provides domain services that orchestrate business
// operations across multiple domain entities in the delivery system. It
// implements workflows that don't naturally belong to a single aggregate root.
//
// The package includes:
//   - DispatchEngine: a domain service that filters, scores and assigns
//     fleet drones to delivery orders
//
// Domain services coordinate between aggregates, implementing business logic
// that spans multiple bounded contexts following Domain-Driven Design
// principles.
package services
