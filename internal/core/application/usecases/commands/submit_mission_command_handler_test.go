package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dronedelivery/internal/core/application/usecases/commands"
	"dronedelivery/internal/core/domain/model/job"
	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/mission"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/pkg/errs"
)

var testConstraints = mission.Constraints{BatteryMinPct: 30, ServiceAreaID: "zrh-1"}

func newSubmitMissionCommand(t *testing.T, testOrder *order.Order) commands.SubmitMissionCommand {
	t.Helper()
	cmd, err := commands.NewSubmitMissionCommand(testOrder.ID())
	require.NoError(t, err)
	return cmd
}

func TestSubmitMissionCommandHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes the intent and records its id on the job", func(t *testing.T) {
		testOrder := newTestOrder(t, order.Assigned)
		activeJob, err := job.NewDeliveryJob(kernel.NewUUID(), testOrder.ID(), "drone-1")
		require.NoError(t, err)
		cmd := newSubmitMissionCommand(t, testOrder)

		orderRepo := new(MockOrderRepository)
		jobRepo := new(MockJobRepository)
		eventRepo := new(MockEventRepository)
		publisher := new(MockMissionPublisher)
		uow := new(MockUoW)

		var published mission.Intent
		mock.InOrder(
			uow.On("Begin", ctx).Return(nil).Once(),
			uow.On("OrderRepository").Return(orderRepo).Once(),
			orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Once(),
			uow.On("JobRepository").Return(jobRepo).Once(),
			jobRepo.On("GetActiveByOrderID", ctx, testOrder.ID()).Return(activeJob, nil).Once(),
			publisher.On("PublishIntent", ctx, mock.AnythingOfType("mission.Intent")).
				Run(func(args mock.Arguments) {
					published = args.Get(1).(mission.Intent)
				}).
				Return(nil).Once(),
			jobRepo.On("Update", ctx, activeJob).Return(nil).Once(),
			orderRepo.On("Update", ctx, testOrder).Return(nil).Once(),
			uow.On("EventRepository").Return(eventRepo).Once(),
			eventRepo.On("Add", ctx, eventWith("MISSION_SUBMITTED", "Mission intent submitted")).
				Return(nil).Once(),
			uow.On("Commit", ctx).Return(nil).Once(),
			uow.On("Rollback", ctx).Return(nil).Once(),
		)

		handler := commands.NewSubmitMissionCommandHandler(
			FuncDispatchUoWFactory(func() commands.DispatchUoW { return uow }),
			publisher, testConstraints)

		intent, err := handler.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, published.IntentID, intent.IntentID)
		assert.Equal(t, testOrder.ID().String(), intent.OrderID)
		assert.Equal(t, "drone-1", intent.DroneID)
		assert.Equal(t, testConstraints, intent.Constraints)
		assert.Equal(t, intent.IntentID, activeJob.MissionIntentID())
		assert.Equal(t, order.MissionSubmitted, testOrder.Status())
		publisher.AssertExpectations(t)
		eventRepo.AssertExpectations(t)
	})

	t.Run("non-ASSIGNED order is a conflict", func(t *testing.T) {
		testOrder := newTestOrder(t, order.Queued)
		cmd := newSubmitMissionCommand(t, testOrder)

		orderRepo := new(MockOrderRepository)
		publisher := new(MockMissionPublisher)
		uow := new(MockUoW)
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("OrderRepository").Return(orderRepo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Once()

		handler := commands.NewSubmitMissionCommandHandler(
			FuncDispatchUoWFactory(func() commands.DispatchUoW { return uow }),
			publisher, testConstraints)

		_, err := handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
		require.EqualError(t, err, "conflict: Mission intent can only be submitted from ASSIGNED")
		publisher.AssertNotCalled(t, "PublishIntent", ctx, mock.Anything)
	})

	t.Run("missing active job is a conflict", func(t *testing.T) {
		testOrder := newTestOrder(t, order.Assigned)
		cmd := newSubmitMissionCommand(t, testOrder)

		orderRepo := new(MockOrderRepository)
		jobRepo := new(MockJobRepository)
		publisher := new(MockMissionPublisher)
		uow := new(MockUoW)
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("OrderRepository").Return(orderRepo).Once()
		uow.On("JobRepository").Return(jobRepo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Once()
		jobRepo.On("GetActiveByOrderID", ctx, testOrder.ID()).
			Return(nil, errs.NewObjectNotFoundError("orderID", testOrder.ID())).Once()

		handler := commands.NewSubmitMissionCommandHandler(
			FuncDispatchUoWFactory(func() commands.DispatchUoW { return uow }),
			publisher, testConstraints)

		_, err := handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
		publisher.AssertNotCalled(t, "PublishIntent", ctx, mock.Anything)
	})

	t.Run("publish failure leaves order and job untouched", func(t *testing.T) {
		testOrder := newTestOrder(t, order.Assigned)
		activeJob, err := job.NewDeliveryJob(kernel.NewUUID(), testOrder.ID(), "drone-1")
		require.NoError(t, err)
		cmd := newSubmitMissionCommand(t, testOrder)

		orderRepo := new(MockOrderRepository)
		jobRepo := new(MockJobRepository)
		publisher := new(MockMissionPublisher)
		uow := new(MockUoW)
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("OrderRepository").Return(orderRepo).Once()
		uow.On("JobRepository").Return(jobRepo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Once()
		jobRepo.On("GetActiveByOrderID", ctx, testOrder.ID()).Return(activeJob, nil).Once()
		publisher.On("PublishIntent", ctx, mock.AnythingOfType("mission.Intent")).
			Return(errs.NewUnavailableError("gcs-bridge", "broker unreachable")).Once()

		handler := commands.NewSubmitMissionCommandHandler(
			FuncDispatchUoWFactory(func() commands.DispatchUoW { return uow }),
			publisher, testConstraints)

		_, err = handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrUnavailable)
		assert.Equal(t, order.Assigned, testOrder.Status())
		assert.Empty(t, activeJob.MissionIntentID())
		jobRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
		uow.AssertNotCalled(t, "Commit", ctx)
	})
}
