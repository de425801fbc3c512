package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

var reservationRowColumns = []string{
	"id", "booking_code", "customer_name", "customer_phone", "customer_email",
	"location_id", "date", "time_slot", "requested_pax", "table_category_id", "availability_id",
	"status", "payment_status", "payment_reference", "source", "needs_reconciliation",
	"created_at", "updated_at",
}

func TestReservationRepo_LockByCode(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	created := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(reservationRowColumns).AddRow(
		42, "RB26-00042", "Dana", "0812345678", nil,
		1, "2026-03-20", "19:00-20:00", 4, 2, 9,
		model.StatusConfirmed, model.PaymentPaid, "PAY-1", model.SourceWhatsApp, false,
		created, created,
	)
	mock.ExpectQuery(`FROM reservations WHERE booking_code = \? FOR UPDATE`).
		WithArgs("RB26-00042").
		WillReturnRows(rows)

	res, err := repo.LockByCode(context.Background(), "RB26-00042")
	require.NoError(t, err)
	assert.EqualValues(t, 42, res.ID)
	assert.Nil(t, res.CustomerEmail)
	require.NotNil(t, res.AvailabilityID)
	assert.EqualValues(t, 9, *res.AvailabilityID)
	require.NotNil(t, res.PaymentReference)
	assert.Equal(t, "PAY-1", *res.PaymentReference)
	assert.Equal(t, "2026-03-20", res.Date.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_Get_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(`FROM reservations WHERE id = \?`).WithArgs(7).WillReturnError(sql.ErrNoRows)
	_, err := repo.Get(context.Background(), 7)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestReservationRepo_SaveState(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	res := &model.Reservation{
		ID: 42, Status: model.StatusCancelled, PaymentStatus: model.PaymentRefunded,
		NeedsReconciliation: true, UpdatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
		WithArgs(model.StatusCancelled, model.PaymentRefunded, nil, nil, true, now, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SaveState(context.Background(), res))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SaveState(context.Background(), res), booking.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations WHERE id = ?")).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 42))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations WHERE id = ?")).
		WithArgs(43).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 43), booking.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_List_Filters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	day := model.MustDate("2026-03-20")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE location_id = ? AND date = ? AND status = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")).
		WithArgs(1, "2026-03-20", model.StatusConfirmed, 50, 0).
		WillReturnRows(sqlmock.NewRows(reservationRowColumns))

	out, err := repo.List(context.Background(), booking.ReservationFilter{
		LocationID: 1, Date: &day, Status: model.StatusConfirmed, Limit: 50,
	})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_CountLive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("status IN ('PENDING_PAYMENT', 'CONFIRMED')")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	n, err := repo.CountLive(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestClosureRepo_FindClosure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClosureRepo(db)
	day := model.MustDate("2026-12-25")

	mock.ExpectQuery(regexp.QuoteMeta("(location_id IS NULL OR location_id = ?)")).
		WithArgs(1, "2026-12-25", "2026-12-25").
		WillReturnRows(sqlmock.NewRows([]string{"id", "location_id", "start_date", "end_date", "reason", "created_at"}))
	c, err := repo.FindClosure(context.Background(), 1, day)
	require.NoError(t, err)
	assert.Nil(t, c)

	mock.ExpectQuery(regexp.QuoteMeta("(location_id IS NULL OR location_id = ?)")).
		WithArgs(1, "2026-12-25", "2026-12-25").
		WillReturnRows(sqlmock.NewRows([]string{"id", "location_id", "start_date", "end_date", "reason", "created_at"}).
			AddRow(3, nil, "2026-12-24", "2026-12-26", "Holiday", time.Now()))
	c, err = repo.FindClosure(context.Background(), 1, day)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Nil(t, c.LocationID)
	assert.Equal(t, "Holiday", c.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}
