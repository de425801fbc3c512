package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// BookingHandler serves the unauthenticated booking API: availability,
// reservation creation, status by booking code, payment callbacks and the
// self-service lookup and cancel endpoints.  All state changes go through
// the booking engine, which owns transactions and ledger accounting.
type BookingHandler struct {
	Bookings BookingService
	Log      *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.  The service must be
// non-nil; a nil logger discards logs.
func NewBookingHandler(svc BookingService, log *zap.Logger) *BookingHandler {
	if svc == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{Bookings: svc, Log: log}
}

// PublicReservation is the view of a reservation returned to anyone who
// knows its booking code.  Contact details are omitted.
type PublicReservation struct {
	BookingCode   string     `json:"booking_code"`
	LocationID    uint64     `json:"location_id"`
	Date          model.Date `json:"date"`
	TimeSlot      string     `json:"time_slot"`
	RequestedPax  int        `json:"requested_pax"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
}

func publicView(r *model.Reservation) PublicReservation {
	return PublicReservation{
		BookingCode:   r.BookingCode,
		LocationID:    r.LocationID,
		Date:          r.Date,
		TimeSlot:      r.TimeSlot,
		RequestedPax:  r.RequestedPax,
		Status:        r.Status,
		PaymentStatus: r.PaymentStatus,
	}
}

// CreateReservation handles POST /v1/reservations.  A table of the
// smallest fitting category is taken from the ledger and the reservation
// is created in PENDING_PAYMENT.  It returns 201 with the reservation and
// the payment page URL, 400 for invalid input or a closed date and 409
// when no table is free.
func (h *BookingHandler) CreateReservation(c echo.Context) error {
	var req createReservationRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.Bookings.CreateOnlineBooking(c.Request().Context(), req.toBooking())
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": res,
		"payment_url": h.Bookings.PaymentURL(res.BookingCode),
	})
}

// GetReservation handles GET /v1/reservations/:code.
func (h *BookingHandler) GetReservation(c echo.Context) error {
	res, err := h.Bookings.ReservationByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, publicView(res))
}

// Availability handles GET /v1/availability.  location_id, date and
// requested_pax are required query parameters.  A closed date returns 200
// with closed=true and the closure reason.
func (h *BookingHandler) Availability(c echo.Context) error {
	locationID, err := queryUint(c, "location_id")
	if err != nil || locationID == 0 {
		return badQuery(c, "location_id")
	}
	date, err := queryDate(c, "date")
	if err != nil || date == nil {
		return badQuery(c, "date")
	}
	pax, err := queryInt(c, "requested_pax", 0)
	if err != nil || pax <= 0 {
		return badQuery(c, "requested_pax")
	}
	out, err := h.Bookings.Availability(c.Request().Context(), booking.AvailabilityQuery{
		LocationID:   locationID,
		Date:         *date,
		RequestedPax: pax,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Payment handles POST /v1/payments, the callback of the payment page.
// action "success" confirms the reservation with a fresh payment reference;
// "failure" marks the payment failed and releases the table.
func (h *BookingHandler) Payment(c echo.Context) error {
	var req paymentRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	res, err := h.Bookings.ReservationByCode(ctx, req.BookingCode)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if req.Action == "success" {
		res, err = h.Bookings.ConfirmPayment(ctx, res.ID, newPaymentReference())
	} else {
		res, err = h.Bookings.FailPayment(ctx, res.ID)
	}
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     req.Action == "success",
		"reservation": publicView(res),
	})
}

// Lookup handles POST /v1/manage/lookup.  Both booking code and phone must
// match; a wrong phone is indistinguishable from an unknown code.
func (h *BookingHandler) Lookup(c echo.Context) error {
	var req manageRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.Bookings.Lookup(c.Request().Context(), req.BookingCode, req.Phone)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles POST /v1/manage/cancel.  The table goes back to the
// ledger and a paid reservation is marked REFUNDED.  Cancelling twice
// returns 400.
func (h *BookingHandler) Cancel(c echo.Context) error {
	var req manageRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.Bookings.Cancel(c.Request().Context(), req.BookingCode, req.Phone)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reservation": res})
}
