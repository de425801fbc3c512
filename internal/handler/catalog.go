package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
)

// CatalogHandler serves locations, table categories and time slots.  The
// public list methods return active entries only; the admin methods see
// everything and may create or edit entries.  Nothing in the catalog is
// ever hard-deleted.
type CatalogHandler struct {
	Locations  LocationStore
	Categories CategoryStore
	TimeSlots  TimeSlotStore
	Log        *zap.Logger
}

func NewCatalogHandler(locations LocationStore, categories CategoryStore, slots TimeSlotStore, log *zap.Logger) *CatalogHandler {
	if locations == nil || categories == nil || slots == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogHandler{Locations: locations, Categories: categories, TimeSlots: slots, Log: log}
}

// PublicLocations handles GET /v1/locations.
func (h *CatalogHandler) PublicLocations(c echo.Context) error {
	return h.listLocations(c, true)
}

// AdminLocations handles GET /v1/admin/locations.
func (h *CatalogHandler) AdminLocations(c echo.Context) error {
	return h.listLocations(c, false)
}

func (h *CatalogHandler) listLocations(c echo.Context, activeOnly bool) error {
	items, err := h.Locations.List(c.Request().Context(), activeOnly)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateLocation handles POST /v1/admin/locations.  Names are unique.
func (h *CatalogHandler) CreateLocation(c echo.Context) error {
	var req locationRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	loc := &model.Location{
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
		IsActive:  boolOr(req.IsActive, true),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Locations.Create(c.Request().Context(), loc); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, loc)
}

// UpdateLocation handles PUT /v1/admin/locations/:id.  Setting is_active
// to false hides the location from the public API and from new bookings.
func (h *CatalogHandler) UpdateLocation(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	var req locationRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	loc, err := h.Locations.GetLocation(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	loc.Name = strings.TrimSpace(req.Name)
	loc.Address = strings.TrimSpace(req.Address)
	loc.IsActive = boolOr(req.IsActive, loc.IsActive)
	if err := h.Locations.Update(ctx, loc); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, loc)
}

// PublicCategories handles GET /v1/table-categories.
func (h *CatalogHandler) PublicCategories(c echo.Context) error {
	return h.listCategories(c, true)
}

// AdminCategories handles GET /v1/admin/table-categories.
func (h *CatalogHandler) AdminCategories(c echo.Context) error {
	return h.listCategories(c, false)
}

func (h *CatalogHandler) listCategories(c echo.Context, activeOnly bool) error {
	items, err := h.Categories.List(c.Request().Context(), activeOnly)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateCategory handles POST /v1/admin/table-categories.  At most one
// category exists per pax size.
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	cat := &model.TableCategory{
		PaxSize:     req.PaxSize,
		Description: strings.TrimSpace(req.Description),
		IsActive:    boolOr(req.IsActive, true),
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Categories.Create(c.Request().Context(), cat); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

// UpdateCategory handles PUT /v1/admin/table-categories/:id.
func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	var req categoryRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	cat, err := h.Categories.GetCategory(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	cat.PaxSize = req.PaxSize
	cat.Description = strings.TrimSpace(req.Description)
	cat.IsActive = boolOr(req.IsActive, cat.IsActive)
	if err := h.Categories.Update(ctx, cat); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, cat)
}

// PublicTimeSlots handles GET /v1/time-slots.
func (h *CatalogHandler) PublicTimeSlots(c echo.Context) error {
	return h.listTimeSlots(c, true)
}

// AdminTimeSlots handles GET /v1/admin/time-slots.
func (h *CatalogHandler) AdminTimeSlots(c echo.Context) error {
	return h.listTimeSlots(c, false)
}

func (h *CatalogHandler) listTimeSlots(c echo.Context, activeOnly bool) error {
	items, err := h.TimeSlots.List(c.Request().Context(), activeOnly)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateTimeSlot handles POST /v1/admin/time-slots.  New slots are appended
// at the end of the display order.
func (h *CatalogHandler) CreateTimeSlot(c echo.Context) error {
	var req timeSlotRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	slot := &model.TimeSlot{Slot: strings.TrimSpace(req.Slot)}
	if err := h.TimeSlots.Create(c.Request().Context(), slot); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, slot)
}

// SetTimeSlotActive handles PATCH /v1/admin/time-slots/:id.
func (h *CatalogHandler) SetTimeSlotActive(c echo.Context) error {
	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}
	var req activeRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if err := h.TimeSlots.SetActive(c.Request().Context(), id, *req.IsActive); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": *req.IsActive})
}
