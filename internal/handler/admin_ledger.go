package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/booking"
)

// LedgerHandler lets operators manage the availability ledger and the
// closure calendar.
type LedgerHandler struct {
	Ledger LedgerService
	Log    *zap.Logger
}

func NewLedgerHandler(svc LedgerService, log *zap.Logger) *LedgerHandler {
	if svc == nil {
		panic("nil ledger service passed to NewLedgerHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerHandler{Ledger: svc, Log: log}
}

// ListRows handles GET /v1/admin/availability?location_id=&date=.
func (h *LedgerHandler) ListRows(c echo.Context) error {
	var f booking.LedgerFilter
	var err error
	if f.LocationID, err = queryUint(c, "location_id"); err != nil {
		return badQuery(c, "location_id")
	}
	if f.Date, err = queryDate(c, "date"); err != nil {
		return badQuery(c, "date")
	}
	rows, err := h.Ledger.ListLedger(c.Request().Context(), f)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// UpsertRow handles POST /v1/admin/availability.  It creates the row for
// (location, date, slot, category) or overwrites its counts.
// available_tables defaults to total_tables.
func (h *LedgerHandler) UpsertRow(c echo.Context) error {
	var req ledgerRowRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	row, err := h.Ledger.UpsertLedgerRow(c.Request().Context(), booking.LedgerRowInput{
		LocationID:      req.LocationID,
		Date:            req.Date,
		TimeSlot:        req.TimeSlot,
		TableCategoryID: req.TableCategoryID,
		TotalTables:     req.TotalTables,
		AvailableTables: req.AvailableTables,
		IsActive:        req.IsActive,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// GetRow handles GET /v1/admin/availability/:id.
func (h *LedgerHandler) GetRow(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	row, err := h.Ledger.LedgerRow(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// UpdateCapacity handles PUT /v1/admin/availability/:id.  When only
// total_tables is sent the available count is clamped to it.
func (h *LedgerHandler) UpdateCapacity(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	var req capacityRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	row, err := h.Ledger.UpdateLedgerCapacity(c.Request().Context(), id, *req.TotalTables, req.AvailableTables)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// SetActive handles PATCH /v1/admin/availability/:id.
func (h *LedgerHandler) SetActive(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	var req activeRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if err := h.Ledger.SetLedgerRowActive(c.Request().Context(), id, *req.IsActive); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": *req.IsActive})
}

// DeleteRow handles DELETE /v1/admin/availability/:id.  Rows still
// referenced by live reservations cannot be deleted (409).
func (h *LedgerHandler) DeleteRow(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	if err := h.Ledger.DeleteLedgerRow(c.Request().Context(), id); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Provision handles POST /v1/admin/availability/bulk and reports how many
// rows were written.
func (h *LedgerHandler) Provision(c echo.Context) error {
	var req provisionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	n, err := h.Ledger.Provision(c.Request().Context(), req.toProvision())
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

// ListClosures handles GET /v1/admin/closures.
func (h *LedgerHandler) ListClosures(c echo.Context) error {
	items, err := h.Ledger.ListClosures(c.Request().Context())
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateClosure handles POST /v1/admin/closures.  Omitting location_id
// closes every location.
func (h *LedgerHandler) CreateClosure(c echo.Context) error {
	var req closureRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	cl, err := h.Ledger.CreateClosure(c.Request().Context(), booking.ClosureInput{
		LocationID: req.LocationID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Reason:     req.Reason,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, cl)
}

// DeleteClosure handles DELETE /v1/admin/closures/:id.
func (h *LedgerHandler) DeleteClosure(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	if err := h.Ledger.DeleteClosure(c.Request().Context(), id); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
