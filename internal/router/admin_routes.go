package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/utils"
)

// RegisterAdmin registers operator endpoints under /v1/admin.  All routes
// require a valid JWT carrying the ADMIN role.  Successful catalog writes
// purge the public response cache.
func RegisterAdmin(e *echo.Echo, r *handler.AdminReservationHandler, l *handler.LedgerHandler, cat *handler.CatalogHandler, opts Options) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(utils.RoleAdmin),
	)

	// ---- Reservations ----
	g.GET("/reservations", r.List)
	g.GET("/reservations/:id", r.Get)
	g.POST("/reservations/offline", r.CreateOffline)
	g.POST("/reservations/:id/cancel", r.Cancel)
	g.POST("/reservations/:id/no-show", r.NoShow)
	g.DELETE("/reservations/:id", r.Delete)

	// ---- Availability ledger ----
	g.GET("/availability", l.ListRows)
	g.POST("/availability", l.UpsertRow)
	g.POST("/availability/bulk", l.Provision)
	g.GET("/availability/:id", l.GetRow)
	g.PUT("/availability/:id", l.UpdateCapacity)
	g.PATCH("/availability/:id", l.SetActive)
	g.DELETE("/availability/:id", l.DeleteRow)

	// ---- Closures ----
	g.GET("/closures", l.ListClosures)
	g.POST("/closures", l.CreateClosure)
	g.DELETE("/closures/:id", l.DeleteClosure)

	// ---- Catalog ----
	purge := middleware.PurgeOnWrite(opts.Cache, opts.Redis)
	c := g.Group("", purge)
	c.GET("/locations", cat.AdminLocations)
	c.POST("/locations", cat.CreateLocation)
	c.PUT("/locations/:id", cat.UpdateLocation)
	c.GET("/table-categories", cat.AdminCategories)
	c.POST("/table-categories", cat.CreateCategory)
	c.PUT("/table-categories/:id", cat.UpdateCategory)
	c.GET("/time-slots", cat.AdminTimeSlots)
	c.POST("/time-slots", cat.CreateTimeSlot)
	c.PATCH("/time-slots/:id", cat.SetTimeSlotActive)
}
