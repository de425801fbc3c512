package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/booking"
)

// AdminReservationHandler exposes operator actions on reservations.  Routes
// are expected behind JWT authentication and the ADMIN role guard.
type AdminReservationHandler struct {
	Bookings BookingService
	Log      *zap.Logger
}

func NewAdminReservationHandler(svc BookingService, log *zap.Logger) *AdminReservationHandler {
	if svc == nil {
		panic("nil booking service passed to NewAdminReservationHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminReservationHandler{Bookings: svc, Log: log}
}

// CreateOffline handles POST /v1/admin/reservations/offline.  Bookings
// taken at the door or over the phone are confirmed immediately; payment
// defaults to PAID with reference OFFLINE.
func (h *AdminReservationHandler) CreateOffline(c echo.Context) error {
	var req offlineReservationRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.Bookings.CreateOfflineBooking(c.Request().Context(), req.toBooking(), booking.OfflinePayment{
		PaymentStatus:    req.PaymentStatus,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.Info("offline reservation recorded",
		zap.String("booking_code", res.BookingCode),
		zap.String("operator", operatorID(c)))
	return c.JSON(http.StatusCreated, echo.Map{"reservation": res})
}

// List handles GET /v1/admin/reservations.  Optional filters:
// location_id, date, status, limit and offset.
func (h *AdminReservationHandler) List(c echo.Context) error {
	var f booking.ReservationFilter
	var err error
	if f.LocationID, err = queryUint(c, "location_id"); err != nil {
		return badQuery(c, "location_id")
	}
	if f.Date, err = queryDate(c, "date"); err != nil {
		return badQuery(c, "date")
	}
	if f.Limit, err = queryInt(c, "limit", 100); err != nil {
		return badQuery(c, "limit")
	}
	if f.Offset, err = queryInt(c, "offset", 0); err != nil {
		return badQuery(c, "offset")
	}
	f.Status = strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))

	items, err := h.Bookings.ListReservations(c.Request().Context(), f)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Get handles GET /v1/admin/reservations/:id.
func (h *AdminReservationHandler) Get(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	res, err := h.Bookings.GetReservation(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles POST /v1/admin/reservations/:id/cancel.
func (h *AdminReservationHandler) Cancel(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	res, err := h.Bookings.CancelByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reservation": res})
}

// NoShow handles POST /v1/admin/reservations/:id/no-show.  Only confirmed
// reservations qualify and the table is not returned.
func (h *AdminReservationHandler) NoShow(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	res, err := h.Bookings.MarkNoShow(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reservation": res})
}

// Delete handles DELETE /v1/admin/reservations/:id.  It removes the record
// as a data correction; a live reservation's table goes back to the ledger.
func (h *AdminReservationHandler) Delete(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	if err := h.Bookings.DeleteReservation(c.Request().Context(), id); err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.Info("reservation removed by operator",
		zap.Uint64("reservation_id", id),
		zap.String("operator", operatorID(c)))
	return c.NoContent(http.StatusNoContent)
}

// operatorID returns the token subject set by the JWT middleware.
func operatorID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}
