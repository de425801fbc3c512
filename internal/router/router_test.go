package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/utils"
)

const secret = "router-test-secret-0123"

type stubLedger struct{ handler.LedgerService }

func (stubLedger) ListClosures(context.Context) ([]model.Closure, error) {
	return []model.Closure{}, nil
}

type stubLocations struct {
	handler.LocationStore
	lists int
}

func (s *stubLocations) List(context.Context, bool) ([]model.Location, error) {
	s.lists++
	return []model.Location{{ID: 1, Name: "Harbour", IsActive: true}}, nil
}

func (s *stubLocations) Create(_ context.Context, l *model.Location) error {
	l.ID = 2
	return nil
}

type pingOK struct{}

func (pingOK) PingContext(context.Context) error { return nil }

func setup(t *testing.T, locs *stubLocations) (*echo.Echo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	opts := Options{
		JWTSecret: secret,
		Cache: config.CacheConfig{
			Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute,
			KeyStrategy: "route_query", Prefix: "cache", MaxBodyBytes: 1 << 20,
		},
		RateLimit: config.RateLimitConfig{
			Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour,
			TTL: 5 * time.Hour, KeyStrategy: "ip_route", Prefix: "rl",
		},
		Redis: rdb,
		Log:   zap.NewNop(),
	}
	var bookings struct{ handler.BookingService }
	cat := handler.NewCatalogHandler(locs, &struct{ handler.CategoryStore }{}, &struct{ handler.TimeSlotStore }{}, nil)

	e := New(zap.NewNop())
	RegisterRoutes(e, pingOK{})
	RegisterPublic(e, handler.NewBookingHandler(&bookings, nil), cat, opts)
	RegisterAdmin(e,
		handler.NewAdminReservationHandler(&bookings, nil),
		handler.NewLedgerHandler(stubLedger{}, nil),
		cat, opts)
	return e, mr
}

func call(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func adminToken(t *testing.T) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, "ops@example.com", utils.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return tok.Token
}

func TestHealthz(t *testing.T) {
	e, _ := setup(t, &stubLocations{})
	rec := call(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	e, _ := setup(t, &stubLocations{})

	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/v1/admin/closures", "", "").Code)

	staff, err := utils.NewAccessToken(secret, "host@example.com", "STAFF", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(e, http.MethodGet, "/v1/admin/closures", "", staff.Token).Code)

	rec := call(e, http.MethodGet, "/v1/admin/closures", "", adminToken(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestCatalogCacheIsPurgedByAdminWrites(t *testing.T) {
	locs := &stubLocations{}
	e, _ := setup(t, locs)

	assert.Equal(t, "MISS", call(e, http.MethodGet, "/v1/locations", "", "").Header().Get("X-Cache"))
	assert.Equal(t, "HIT", call(e, http.MethodGet, "/v1/locations", "", "").Header().Get("X-Cache"))
	assert.Equal(t, 1, locs.lists)

	rec := call(e, http.MethodPost, "/v1/admin/locations", `{"name":"Riverside"}`, adminToken(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "MISS", call(e, http.MethodGet, "/v1/locations", "", "").Header().Get("X-Cache"))
	assert.Equal(t, 2, locs.lists)
}

func TestReservationWritesAreRateLimited(t *testing.T) {
	e, _ := setup(t, &stubLocations{})

	// the bucket is consumed before validation runs
	first := call(e, http.MethodPost, "/v1/reservations", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, first.Code)
	second := call(e, http.MethodPost, "/v1/reservations", `{}`, "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// other routes have their own bucket
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/v1/manage/cancel", `{}`, "").Code)
}
