package queries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
)

// ListOrdersQueryHandler reads order summary pages straight from the
// database.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListOrdersQueryHandler creates a handler for orders listing queries.
func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// Handle executes the listing query, newest orders first.
func (h ListOrdersQueryHandler) Handle(
	ctx context.Context,
	query ListOrdersQuery,
) (ListOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return ListOrdersQueryResponse{}, err
	}

	response := ListOrdersQueryResponse{
		Items:    make([]OrderSummaryResponse, 0),
		Page:     query.Page(),
		PageSize: query.PageSize(),
	}

	statusValue := -1
	if query.StatusFilter() != "" {
		status, err := order.StatusFromString(query.StatusFilter())
		if err != nil {
			// Unknown filter value: empty page, not an error.
			return response, nil
		}
		statusValue = int(status)
	}

	countSQL := `SELECT COUNT(*) FROM orders WHERE (? < 0 OR status = ?)`
	row := h.db.WithContext(ctx).Raw(countSQL, statusValue, statusValue).Row()
	if err := row.Scan(&response.Total); err != nil {
		return ListOrdersQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			public_tracking_id,
			customer_name,
			status,
			created_at,
			updated_at
		FROM orders
		WHERE (? < 0 OR status = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, statusValue, statusValue, query.PageSize(), (query.Page()-1)*query.PageSize()).Rows()
	if err != nil {
		return ListOrdersQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var summary OrderSummaryResponse
		var id uuid.UUID
		var status int

		err = rows.Scan(
			&id,
			&summary.PublicTrackingID,
			&summary.CustomerName,
			&status,
			&summary.CreatedAt,
			&summary.UpdatedAt,
		)
		if err != nil {
			return ListOrdersQueryResponse{}, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return ListOrdersQueryResponse{}, idErr
		}
		summary.ID = orderID
		summary.Status = order.Status(status).String()
		response.Items = append(response.Items, summary)
	}

	if err = rows.Err(); err != nil {
		return ListOrdersQueryResponse{}, err
	}

	return response, nil
}
