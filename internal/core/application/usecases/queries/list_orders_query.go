package queries

import (
	"errors"
	"fmt"
	"time"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/guard"
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// MaxPageSize caps a single orders page.
const MaxPageSize = 100

// ListOrdersQuery retrieves a page of orders, newest first, optionally
// filtered by status. An unrecognized status filter matches nothing rather
// than failing: the filter value is operator input, not an API contract.
type ListOrdersQuery struct {
	page         int
	pageSize     int
	statusFilter string

	guard guard.ConstructorGuard
}

// NewListOrdersQuery creates a validated orders listing query. Pass an empty
// statusFilter to list every status.
func NewListOrdersQuery(page, pageSize int, statusFilter string) (ListOrdersQuery, error) {
	if page < 1 {
		return ListOrdersQuery{}, errs.NewInvalidInputError("page must be at least 1")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return ListOrdersQuery{}, errs.NewInvalidInputError(
			fmt.Sprintf("page size must be between 1 and %d", MaxPageSize))
	}
	return ListOrdersQuery{
		page:         page,
		pageSize:     pageSize,
		statusFilter: statusFilter,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// Page returns the requested 1-based page number.
func (q ListOrdersQuery) Page() int {
	return q.page
}

// PageSize returns the requested page size.
func (q ListOrdersQuery) PageSize() int {
	return q.pageSize
}

// StatusFilter returns the status name to filter by, or "".
func (q ListOrdersQuery) StatusFilter() string {
	return q.statusFilter
}

// OrderSummaryResponse is one row of the orders listing.
type OrderSummaryResponse struct {
	ID               kernel.UUID `json:"id"`
	PublicTrackingID string      `json:"public_tracking_id"`
	CustomerName     string      `json:"customer_name"`
	Status           string      `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// ListOrdersQueryResponse is a page of order summaries plus the total match
// count for pagination.
type ListOrdersQueryResponse struct {
	Items    []OrderSummaryResponse `json:"items"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}
