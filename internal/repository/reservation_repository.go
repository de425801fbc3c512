package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// ReservationRepo provides access to the reservations table.  All
// timestamps are stored in UTC.
type ReservationRepo struct {
	db DBTX
}

var _ booking.Reservations = (*ReservationRepo)(nil)

// NewReservationRepo returns a ReservationRepo bound to a pool or transaction.
func NewReservationRepo(db DBTX) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, booking_code, customer_name, customer_phone, customer_email,
	location_id, date, time_slot, requested_pax, table_category_id, availability_id,
	status, payment_status, payment_reference, source, needs_reconciliation,
	created_at, updated_at`

func scanReservation(sc interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		res   model.Reservation
		email sql.NullString
		avail sql.NullInt64
		ref   sql.NullString
	)
	err := sc.Scan(&res.ID, &res.BookingCode, &res.CustomerName, &res.CustomerPhone, &email,
		&res.LocationID, &res.Date, &res.TimeSlot, &res.RequestedPax, &res.TableCategoryID, &avail,
		&res.Status, &res.PaymentStatus, &ref, &res.Source, &res.NeedsReconciliation,
		&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		e := email.String
		res.CustomerEmail = &e
	}
	if avail.Valid {
		id := uint64(avail.Int64)
		res.AvailabilityID = &id
	}
	if ref.Valid {
		r := ref.String
		res.PaymentReference = &r
	}
	return &res, nil
}

func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Create inserts a reservation carrying a placeholder booking code and sets
// its ID.  The caller assigns the real code with SetBookingCode in the same
// transaction.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	             (booking_code, customer_name, customer_phone, customer_email, location_id, date,
	              time_slot, requested_pax, table_category_id, availability_id, status,
	              payment_status, payment_reference, source, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.BookingCode, res.CustomerName, res.CustomerPhone, nullableString(res.CustomerEmail),
		res.LocationID, res.Date, res.TimeSlot, res.RequestedPax, res.TableCategoryID,
		nullableID(res.AvailabilityID), res.Status, res.PaymentStatus,
		nullableString(res.PaymentReference), res.Source, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

func (r *ReservationRepo) SetBookingCode(ctx context.Context, id uint64, code string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reservations SET booking_code = ? WHERE id = ?`, code, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *ReservationRepo) getOne(ctx context.Context, where string, arg any, lock bool) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE ` + where
	if lock {
		q += ` FOR UPDATE`
	}
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

func (r *ReservationRepo) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	return r.getOne(ctx, "id = ?", id, false)
}

func (r *ReservationRepo) GetByCode(ctx context.Context, code string) (*model.Reservation, error) {
	return r.getOne(ctx, "booking_code = ?", code, false)
}

// Lock reads the reservation with SELECT ... FOR UPDATE so concurrent
// lifecycle operations on it run one after another.
func (r *ReservationRepo) Lock(ctx context.Context, id uint64) (*model.Reservation, error) {
	return r.getOne(ctx, "id = ?", id, true)
}

func (r *ReservationRepo) LockByCode(ctx context.Context, code string) (*model.Reservation, error) {
	return r.getOne(ctx, "booking_code = ?", code, true)
}

func (r *ReservationRepo) SaveState(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
	           SET status = ?, payment_status = ?, payment_reference = ?, availability_id = ?,
	               needs_reconciliation = ?, updated_at = ?
	           WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, res.Status, res.PaymentStatus, nullableString(res.PaymentReference),
		nullableID(res.AvailabilityID), res.NeedsReconciliation, res.UpdatedAt, res.ID)
	if err != nil {
		return translate(err)
	}
	return requireAffected(result)
}

func (r *ReservationRepo) CountLive(ctx context.Context, availabilityID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM reservations
	           WHERE availability_id = ? AND status IN ('PENDING_PAYMENT', 'CONFIRMED')`
	var n int
	if err := r.db.QueryRowContext(ctx, q, availabilityID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes the reservation row.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

// List returns reservations newest first, filtered for operator views.
func (r *ReservationRepo) List(ctx context.Context, f booking.ReservationFilter) ([]model.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if f.LocationID != 0 {
		where = append(where, "location_id = ?")
		args = append(args, f.LocationID)
	}
	if f.Date != nil {
		where = append(where, "date = ?")
		args = append(args, *f.Date)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	q := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}
