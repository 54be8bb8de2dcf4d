// Package kernel contains the shared value objects of the domain model:
// validated geographic coordinates with great-circle distance, service-area
// bounding boxes, and the UUID identity wrapper. These types are immutable
// once constructed and safe to pass by value across aggregates.
package kernel
