package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/repository"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorTable maps engine and repository errors to HTTP responses.  The
// first matching entry wins.
var errorTable = []errorMapping{
	{booking.ErrNotFound, http.StatusNotFound, "not found"},
	{booking.ErrAlreadyCancelled, http.StatusBadRequest, "reservation is already cancelled"},
	{booking.ErrNoCapacity, http.StatusBadRequest, "no table available for the requested party size"},
	{booking.ErrInvalidTransition, http.StatusConflict, "reservation is not in a state that allows this action"},
	{booking.ErrRowInUse, http.StatusConflict, "availability row still has live reservations"},
	{booking.ErrInvalidCapacity, http.StatusBadRequest, "available_tables must be between 0 and total_tables"},
	{booking.ErrRangeTooLarge, http.StatusBadRequest, "date range is too large"},
	{repository.ErrDuplicate, http.StatusConflict, "already exists"},
}

// respondError writes the JSON error response for err.  Validation and
// closure errors carry their detail; unexpected errors are logged and
// reported generically.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error(), "field": verr.Field})
	}
	var closed *booking.ClosedError
	if errors.As(err, &closed) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "closed", "reason": closed.Reason})
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "request timeout"})
	case errors.Is(err, context.Canceled):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request cancelled"})
	}

	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return c.JSON(m.status, echo.Map{"error": m.message})
		}
	}

	fields := []zap.Field{
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err),
	}
	if errors.Is(err, booking.ErrCapacityViolation) {
		log.Error("capacity invariant violated", fields...)
	} else {
		log.Error("request failed", fields...)
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
