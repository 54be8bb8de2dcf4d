// Package http is the inbound HTTP adapter: an echo server exposing the
// order, dispatch and tracking API plus the middleware for authentication,
// rate limiting and idempotent retries.
package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dronedelivery/internal/core/application/usecases/commands"
	"dronedelivery/internal/core/application/usecases/queries"
	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/core/domain/model/pod"
	"dronedelivery/internal/pkg/auth"
	"dronedelivery/internal/pkg/idempotency"
	"dronedelivery/internal/pkg/ratelimit"
)

// Handlers bundles the use case handlers the server dispatches to.
type Handlers struct {
	CreateOrder     commands.CreateOrderCommandHandler
	CancelOrder     commands.CancelOrderCommandHandler
	TransitionOrder commands.TransitionOrderCommandHandler
	AutoDispatch    commands.AutoDispatchCommandHandler
	ManualAssign    commands.ManualAssignCommandHandler
	SubmitMission   commands.SubmitMissionCommandHandler
	CreatePod       commands.CreatePodCommandHandler

	GetOrder        queries.GetOrderQueryHandler
	ListOrders      queries.ListOrdersQueryHandler
	GetOrderEvents  queries.GetOrderEventsQueryHandler
	GetTrackingView queries.GetTrackingViewQueryHandler
}

// Server coordinates between HTTP requests and the application use cases.
type Server struct {
	handlers Handlers

	// defaultMaxAssignments caps a dispatch run when the request does not
	// name its own cap.
	defaultMaxAssignments int
}

// NewServer creates the HTTP server over the given use case handlers.
func NewServer(handlers Handlers, defaultMaxAssignments int) *Server {
	if defaultMaxAssignments < 1 {
		defaultMaxAssignments = 1
	}
	return &Server{handlers: handlers, defaultMaxAssignments: defaultMaxAssignments}
}

// RegisterRoutes wires the API onto the echo instance. Order creation and the
// public tracking view are rate limited; every mutating order route honors
// the Idempotency-Key header.
func (s *Server) RegisterRoutes(
	e *echo.Echo,
	verifier *auth.Verifier,
	limiter ratelimit.Limiter,
	guard *idempotency.Guard,
	orderCreateQuota Quota,
	trackingQuota Quota,
) {
	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1", Authenticate(verifier))
	api.POST("/orders", s.CreateOrder, RateLimit(limiter, orderCreateQuota), Idempotent(guard))
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders/:id/events", s.GetOrderEvents)
	api.POST("/orders/:id/cancel", s.CancelOrder, Idempotent(guard))
	api.POST("/orders/:id/assign", s.ManualAssign, Idempotent(guard))
	api.POST("/orders/:id/submit-mission", s.SubmitMission, Idempotent(guard))
	api.POST("/orders/:id/status", s.UpdateStatus, Idempotent(guard))
	api.POST("/orders/:id/pod", s.CreatePod, Idempotent(guard))
	api.POST("/dispatch/run", s.RunDispatch)
	api.GET("/tracking/:trackingID", s.GetTracking, RateLimit(limiter, trackingQuota))
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var request CreateOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	pickup, err := kernel.NewGeoPoint(request.PickupLat, request.PickupLng)
	if err != nil {
		return writeError(ctx, err)
	}
	dropoff, err := kernel.NewGeoPoint(request.DropoffLat, request.DropoffLng)
	if err != nil {
		return writeError(ctx, err)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(
		orderID, request.CustomerName, request.CustomerPhone,
		pickup, dropoff, request.DropoffAccuracyM,
		request.PayloadWeightKg, request.PayloadType, order.Priority(request.Priority),
	)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return s.respondWithOrderDetail(ctx, orderID, http.StatusCreated)
}

// ListOrders handles GET /api/v1/orders.
func (s *Server) ListOrders(ctx echo.Context) error {
	page := intQueryParam(ctx, "page", 1)
	pageSize := intQueryParam(ctx, "page_size", 20)

	query, err := queries.NewListOrdersQuery(page, pageSize, ctx.QueryParam("status"))
	if err != nil {
		return writeError(ctx, err)
	}

	response, err := s.handlers.ListOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return writeError(ctx, err)
	}
	return s.respondWithOrderDetail(ctx, orderID, http.StatusOK)
}

// GetOrderEvents handles GET /api/v1/orders/:id/events.
func (s *Server) GetOrderEvents(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	query, err := queries.NewGetOrderEventsQuery(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	timeline, err := s.handlers.GetOrderEvents.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, timeline)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewCancelOrderCommand(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.handlers.CancelOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return s.respondWithOrderDetail(ctx, orderID, http.StatusOK)
}

// ManualAssign handles POST /api/v1/orders/:id/assign.
func (s *Server) ManualAssign(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	var request ManualAssignRequest
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewManualAssignCommand(orderID, request.DroneID)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.handlers.ManualAssign.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return s.respondWithOrderDetail(ctx, orderID, http.StatusOK)
}

// SubmitMission handles POST /api/v1/orders/:id/submit-mission.
func (s *Server) SubmitMission(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewSubmitMissionCommand(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	intent, err := s.handlers.SubmitMission.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, MissionSubmitResponse{
		OrderID:         intent.OrderID,
		MissionIntentID: intent.IntentID,
		Status:          order.MissionSubmitted.String(),
	})
}

// UpdateStatus handles POST /api/v1/orders/:id/status.
func (s *Server) UpdateStatus(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	var request StatusUpdateRequest
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	next, err := order.StatusFromString(request.Status)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, next)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.handlers.TransitionOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return s.respondWithOrderDetail(ctx, orderID, http.StatusOK)
}

// CreatePod handles POST /api/v1/orders/:id/pod.
func (s *Server) CreatePod(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	var request PodCreateRequest
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewCreatePodCommand(
		orderID, pod.Method(request.Method),
		request.PhotoURL, request.OTPCode, request.ConfirmedBy,
		request.Notes, request.Metadata,
	)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.handlers.CreatePod.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, map[string]string{
		"order_id": orderID.String(),
		"method":   request.Method,
	})
}

// DispatchRunResponse reports the outcome of one dispatch run.
type DispatchRunResponse struct {
	Examined    int                  `json:"examined"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// AssignmentResponse is one committed assignment of a dispatch run.
type AssignmentResponse struct {
	OrderID string `json:"order_id"`
	DroneID string `json:"drone_id"`
	JobID   string `json:"job_id"`
}

// RunDispatch handles POST /api/v1/dispatch/run.
func (s *Server) RunDispatch(ctx echo.Context) error {
	request := DispatchRunRequest{MaxAssignments: s.defaultMaxAssignments}
	if ctx.Request().ContentLength > 0 {
		if err := ctx.Bind(&request); err != nil {
			return ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    http.StatusBadRequest,
				Message: "Invalid request body",
			})
		}
		if request.MaxAssignments == 0 {
			request.MaxAssignments = s.defaultMaxAssignments
		}
	}

	cmd, err := commands.NewAutoDispatchCommand(request.MaxAssignments)
	if err != nil {
		return writeError(ctx, err)
	}

	result, err := s.handlers.AutoDispatch.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	response := DispatchRunResponse{
		Examined:    result.Examined,
		Assignments: make([]AssignmentResponse, 0, len(result.Assignments)),
	}
	for _, assignment := range result.Assignments {
		response.Assignments = append(response.Assignments, AssignmentResponse{
			OrderID: assignment.OrderID,
			DroneID: assignment.DroneID,
			JobID:   assignment.JobID,
		})
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetTracking handles GET /api/v1/tracking/:trackingID.
func (s *Server) GetTracking(ctx echo.Context) error {
	query, err := queries.NewGetTrackingViewQuery(ctx.Param("trackingID"))
	if err != nil {
		return writeError(ctx, err)
	}

	view, err := s.handlers.GetTrackingView.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, view)
}

// respondWithOrderDetail reads the order back through the detail query so
// mutating endpoints answer with the fresh state.
func (s *Server) respondWithOrderDetail(ctx echo.Context, orderID kernel.UUID, status int) error {
	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	detail, err := s.handlers.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(status, detail)
}

// parseOrderID reads the :id path parameter.
func parseOrderID(ctx echo.Context) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param("id"))
}

// intQueryParam reads an integer query parameter, falling back to the default
// when absent or malformed.
func intQueryParam(ctx echo.Context, name string, fallback int) int {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
