package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"dronedelivery/internal/pkg/errs"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError maps a domain error onto its HTTP status and writes the JSON
// error body. Unclassified errors become 500 without leaking their message.
func writeError(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, errs.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, errs.ErrUnavailable):
		status = http.StatusServiceUnavailable
		message = err.Error()
	case errors.Is(err, errs.ErrProtocol):
		status = http.StatusBadGateway
		message = err.Error()
	}

	return ctx.JSON(status, ErrorResponse{Code: status, Message: message})
}
