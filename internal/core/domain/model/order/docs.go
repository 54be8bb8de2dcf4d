// Package order contains the Order aggregate root and its lifecycle state
// machine. The Status type defines the 13 order states and the transition
// graph; the Order aggregate guarantees that every status change goes
// through state-machine validation, making illegal transitions structurally
// impossible for callers holding an *Order.
package order
