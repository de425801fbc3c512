//go:build integration

package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/model"
)

// setupMySQL migrates a scratch schema named by TEST_MYSQL_DSN, e.g.
// root:pass@tcp(127.0.0.1:3306)/reservation_test?parseTime=true&loc=UTC&clientFoundRows=true
func setupMySQL(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	log := zap.NewNop()
	require.NoError(t, database.MigrateDSN(dsn, database.Down, log))
	require.NoError(t, database.MigrateDSN(dsn, database.Up, log))

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(50)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestIntegration_ConcurrentBookings(t *testing.T) {
	db := setupMySQL(t)
	ctx := context.Background()
	store := NewStore(db, zap.NewNop())

	loc := &model.Location{Name: "Harbour", IsActive: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, NewLocationRepo(db).Create(ctx, loc))
	cat := &model.TableCategory{PaxSize: 4, IsActive: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, NewCategoryRepo(db).Create(ctx, cat))

	day := model.DateOf(time.Now().AddDate(0, 0, 7))
	engine := booking.NewEngine(store, nil, zap.NewNop(), booking.DefaultConfig())
	row, err := engine.UpsertLedgerRow(ctx, booking.LedgerRowInput{
		LocationID: loc.ID, Date: day, TimeSlot: "19:00-20:00", TableCategoryID: cat.ID, TotalTables: 5,
	})
	require.NoError(t, err)

	const callers = 30
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.CreateOnlineBooking(ctx, booking.NewBooking{
				CustomerName: "Guest", CustomerPhone: "0812345678",
				LocationID: loc.ID, Date: day, TimeSlot: "19:00-20:00", RequestedPax: 2,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, booking.ErrNoCapacity):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, callers-5, rejected)

	got, err := NewAvailabilityRepo(db).GetRow(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableTables)
}

func TestIntegration_CancelReleasesOnce(t *testing.T) {
	db := setupMySQL(t)
	ctx := context.Background()
	store := NewStore(db, zap.NewNop())

	loc := &model.Location{Name: "Old Town", IsActive: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, NewLocationRepo(db).Create(ctx, loc))
	cat := &model.TableCategory{PaxSize: 2, IsActive: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, NewCategoryRepo(db).Create(ctx, cat))

	day := model.DateOf(time.Now().AddDate(0, 0, 3))
	engine := booking.NewEngine(store, nil, zap.NewNop(), booking.DefaultConfig())
	row, err := engine.UpsertLedgerRow(ctx, booking.LedgerRowInput{
		LocationID: loc.ID, Date: day, TimeSlot: "12:00-13:00", TableCategoryID: cat.ID, TotalTables: 2,
	})
	require.NoError(t, err)

	res, err := engine.CreateOnlineBooking(ctx, booking.NewBooking{
		CustomerName: "Guest", CustomerPhone: "0812345678",
		LocationID: loc.ID, Date: day, TimeSlot: "12:00-13:00", RequestedPax: 2,
	})
	require.NoError(t, err)

	_, err = engine.Cancel(ctx, res.BookingCode, "0812345678")
	require.NoError(t, err)
	_, err = engine.Cancel(ctx, res.BookingCode, "0812345678")
	assert.ErrorIs(t, err, booking.ErrAlreadyCancelled)

	got, err := NewAvailabilityRepo(db).GetRow(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableTables)
}
