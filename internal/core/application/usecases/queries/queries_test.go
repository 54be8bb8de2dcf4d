package queries_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dronedelivery/internal/core/application/usecases/queries"
	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
)

func TestNewGetOrderQuery(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		query, err := queries.NewGetOrderQuery(kernel.NewUUID())
		require.NoError(t, err)
		require.NoError(t, query.Validate())
	})

	t.Run("zero id is rejected", func(t *testing.T) {
		_, err := queries.NewGetOrderQuery(kernel.UUID{})
		require.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		err := queries.GetOrderQuery{}.Validate()
		assert.ErrorIs(t, err, queries.ErrGetOrderQueryIsNotConstructed)
	})
}

func TestNewListOrdersQuery(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		query, err := queries.NewListOrdersQuery(2, 25, "QUEUED")
		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.Equal(t, 2, query.Page())
		assert.Equal(t, 25, query.PageSize())
		assert.Equal(t, "QUEUED", query.StatusFilter())
	})

	t.Run("page below 1 is rejected", func(t *testing.T) {
		_, err := queries.NewListOrdersQuery(0, 25, "")
		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("oversized page is rejected", func(t *testing.T) {
		_, err := queries.NewListOrdersQuery(1, queries.MaxPageSize+1, "")
		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		err := queries.ListOrdersQuery{}.Validate()
		assert.ErrorIs(t, err, queries.ErrListOrdersQueryIsNotConstructed)
	})
}

func TestNewGetOrderEventsQuery(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		query, err := queries.NewGetOrderEventsQuery(kernel.NewUUID())
		require.NoError(t, err)
		require.NoError(t, query.Validate())
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		err := queries.GetOrderEventsQuery{}.Validate()
		assert.ErrorIs(t, err, queries.ErrGetOrderEventsQueryIsNotConstructed)
	})
}

func TestNewGetTrackingViewQuery(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		query, err := queries.NewGetTrackingViewQuery("TRACK12345")
		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.Equal(t, "TRACK12345", query.TrackingID())
	})

	t.Run("empty tracking id is rejected", func(t *testing.T) {
		_, err := queries.NewGetTrackingViewQuery("")
		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		err := queries.GetTrackingViewQuery{}.Validate()
		assert.ErrorIs(t, err, queries.ErrGetTrackingViewQueryIsNotConstructed)
	})
}
