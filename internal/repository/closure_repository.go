package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// ClosureRepo stores closures.  A NULL location_id closes every location.
type ClosureRepo struct {
	db DBTX
}

var _ booking.Closures = (*ClosureRepo)(nil)

func NewClosureRepo(db DBTX) *ClosureRepo { return &ClosureRepo{db: db} }

func scanClosure(sc interface{ Scan(...any) error }) (*model.Closure, error) {
	var (
		c   model.Closure
		loc sql.NullInt64
	)
	if err := sc.Scan(&c.ID, &loc, &c.StartDate, &c.EndDate, &c.Reason, &c.CreatedAt); err != nil {
		return nil, err
	}
	if loc.Valid {
		id := uint64(loc.Int64)
		c.LocationID = &id
	}
	return &c, nil
}

// FindClosure returns the earliest-starting closure covering the date for
// the location, or nil when there is none.
func (r *ClosureRepo) FindClosure(ctx context.Context, locationID uint64, date model.Date) (*model.Closure, error) {
	const q = `SELECT id, location_id, start_date, end_date, reason, created_at
	           FROM closures
	           WHERE (location_id IS NULL OR location_id = ?)
	             AND start_date <= ? AND end_date >= ?
	           ORDER BY start_date, id
	           LIMIT 1`
	c, err := scanClosure(r.db.QueryRowContext(ctx, q, locationID, date, date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ClosureRepo) ListClosures(ctx context.Context) ([]model.Closure, error) {
	const q = `SELECT id, location_id, start_date, end_date, reason, created_at
	           FROM closures ORDER BY start_date, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Closure{}
	for rows.Next() {
		c, err := scanClosure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ClosureRepo) CreateClosure(ctx context.Context, c *model.Closure) error {
	const q = `INSERT INTO closures (location_id, start_date, end_date, reason, created_at) VALUES (?, ?, ?, ?, ?)`
	var loc any
	if c.LocationID != nil {
		loc = *c.LocationID
	}
	res, err := r.db.ExecContext(ctx, q, loc, c.StartDate, c.EndDate, c.Reason, c.CreatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// DeleteClosure removes the closure; a missing id is not an error.
func (r *ClosureRepo) DeleteClosure(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM closures WHERE id = ?`, id)
	return err
}
