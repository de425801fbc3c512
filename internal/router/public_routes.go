package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
)

// RegisterPublic registers the unauthenticated booking API.  Catalog reads
// are served through the Redis response cache; endpoints that create or
// cancel reservations share one token bucket keyed by client and route.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler, cat *handler.CatalogHandler, opts Options) {
	cache := middleware.NewRedisCache(opts.Cache, opts.Redis)
	limit := middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Log)

	g := e.Group("/v1")

	// ---- Catalog ----
	g.GET("/locations", cat.PublicLocations, cache)
	g.GET("/table-categories", cat.PublicCategories, cache)
	g.GET("/time-slots", cat.PublicTimeSlots, cache)

	// ---- Booking ----
	// availability changes with every booking, so it is never cached
	g.GET("/availability", b.Availability)
	g.POST("/reservations", b.CreateReservation, limit)
	g.GET("/reservations/:code", b.GetReservation)
	g.POST("/payments", b.Payment)

	// ---- Self-service ----
	g.POST("/manage/lookup", b.Lookup, limit)
	g.POST("/manage/cancel", b.Cancel, limit)
}
