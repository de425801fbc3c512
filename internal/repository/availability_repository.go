package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// AvailabilityRepo stores the availability ledger in daily_availability.
// Counts are only ever changed by single conditional UPDATE statements so
// InnoDB row locks serialize concurrent writers of the same row.
type AvailabilityRepo struct {
	db DBTX
}

var _ booking.Ledger = (*AvailabilityRepo)(nil)

func NewAvailabilityRepo(db DBTX) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

const availabilityColumns = `da.id, da.location_id, da.date, da.time_slot, da.table_category_id,
	tc.pax_size, da.total_tables, da.available_tables, da.is_active, da.updated_at`

const availabilityFrom = ` FROM daily_availability da
	JOIN table_categories tc ON tc.id = da.table_category_id`

func scanAvailability(sc interface{ Scan(...any) error }) (*model.Availability, error) {
	var a model.Availability
	err := sc.Scan(&a.ID, &a.LocationID, &a.Date, &a.TimeSlot, &a.TableCategoryID,
		&a.PaxSize, &a.TotalTables, &a.AvailableTables, &a.IsActive, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AvailabilityRepo) FindRow(ctx context.Context, key model.LedgerKey) (*model.Availability, error) {
	const q = `SELECT ` + availabilityColumns + availabilityFrom + `
	           WHERE da.location_id = ? AND da.date = ? AND da.time_slot = ? AND da.table_category_id = ?`
	a, err := scanAvailability(r.db.QueryRowContext(ctx, q, key.LocationID, key.Date, key.TimeSlot, key.TableCategoryID))
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (r *AvailabilityRepo) GetRow(ctx context.Context, id uint64) (*model.Availability, error) {
	const q = `SELECT ` + availabilityColumns + availabilityFrom + ` WHERE da.id = ?`
	a, err := scanAvailability(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

// LockRow reads the row with SELECT ... FOR UPDATE.  Only meaningful inside
// a transaction.
func (r *AvailabilityRepo) LockRow(ctx context.Context, id uint64) (*model.Availability, error) {
	const q = `SELECT ` + availabilityColumns + availabilityFrom + ` WHERE da.id = ? FOR UPDATE`
	a, err := scanAvailability(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

// TryDecrement takes one unit.  The WHERE clause is the capacity guard: a
// concurrent writer that drained the row first leaves nothing to match, so
// the affected-row count is the success signal.
func (r *AvailabilityRepo) TryDecrement(ctx context.Context, id uint64) (bool, error) {
	const q = `UPDATE daily_availability
	           SET available_tables = available_tables - 1
	           WHERE id = ? AND is_active = 1 AND available_tables > 0`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Adjust applies delta within [0, total_tables].
func (r *AvailabilityRepo) Adjust(ctx context.Context, id uint64, delta int) error {
	const q = `UPDATE daily_availability
	           SET available_tables = available_tables + ?
	           WHERE id = ? AND available_tables + ? >= 0 AND available_tables + ? <= total_tables`
	res, err := r.db.ExecContext(ctx, q, delta, id, delta, delta)
	if err != nil {
		return translate(err)
	}
	err = requireAffected(res)
	if !errors.Is(err, booking.ErrNotFound) {
		return err
	}
	// Nothing matched: either the row is gone or the guard refused.
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM daily_availability WHERE id = ?`, id).Scan(&exists); err != nil {
		return translate(err)
	}
	return booking.ErrCapacityViolation
}

// Upsert inserts the row or overwrites counts on the existing row with the
// same key.  LAST_INSERT_ID(id) makes LastInsertId report the existing id
// on the update path.
func (r *AvailabilityRepo) Upsert(ctx context.Context, row *model.Availability) error {
	const q = `INSERT INTO daily_availability
	             (location_id, date, time_slot, table_category_id, total_tables, available_tables, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             id = LAST_INSERT_ID(id),
	             total_tables = VALUES(total_tables),
	             available_tables = VALUES(available_tables),
	             is_active = VALUES(is_active)`
	res, err := r.db.ExecContext(ctx, q, row.LocationID, row.Date, row.TimeSlot, row.TableCategoryID,
		row.TotalTables, row.AvailableTables, row.IsActive)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	row.ID = uint64(id)
	return nil
}

// SetCapacity overwrites both counts.  The caller checks available <= total.
func (r *AvailabilityRepo) SetCapacity(ctx context.Context, id uint64, total, available int) error {
	const q = `UPDATE daily_availability SET total_tables = ?, available_tables = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, total, available, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *AvailabilityRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE daily_availability SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *AvailabilityRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM daily_availability WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// List returns ledger rows ordered by date, slot and capacity.
func (r *AvailabilityRepo) List(ctx context.Context, f booking.LedgerFilter) ([]model.Availability, error) {
	var (
		where []string
		args  []any
	)
	if f.LocationID != 0 {
		where = append(where, "da.location_id = ?")
		args = append(args, f.LocationID)
	}
	if f.Date != nil {
		where = append(where, "da.date = ?")
		args = append(args, *f.Date)
	}
	q := `SELECT ` + availabilityColumns + availabilityFrom
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY da.date, da.time_slot, tc.pax_size`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Availability{}
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AvailabilityRepo) OpenRows(ctx context.Context, locationID uint64, date model.Date, pax int) ([]model.OpenSlot, error) {
	const q = `SELECT da.time_slot, da.table_category_id, tc.pax_size, da.id, da.available_tables
	           FROM daily_availability da
	           JOIN table_categories tc ON tc.id = da.table_category_id
	           WHERE da.location_id = ? AND da.date = ?
	             AND da.is_active = 1 AND da.available_tables > 0
	             AND tc.is_active = 1 AND tc.pax_size >= ?
	           ORDER BY da.time_slot ASC, tc.pax_size ASC`
	rows, err := r.db.QueryContext(ctx, q, locationID, date, pax)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.OpenSlot{}
	for rows.Next() {
		var s model.OpenSlot
		if err := rows.Scan(&s.TimeSlot, &s.TableCategoryID, &s.PaxSize, &s.AvailabilityID, &s.AvailableTables); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
