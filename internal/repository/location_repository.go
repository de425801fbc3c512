package repository

import (
	"context"

	"github.com/iliyamo/table-reservation/internal/model"
)

// LocationRepo encapsulates all queries on the locations table.
type LocationRepo struct {
	db DBTX
}

// NewLocationRepo constructs a LocationRepo on a pool or transaction.
func NewLocationRepo(db DBTX) *LocationRepo { return &LocationRepo{db: db} }

const locationColumns = `id, name, address, is_active, created_at`

func scanLocation(sc interface{ Scan(...any) error }) (*model.Location, error) {
	var l model.Location
	if err := sc.Scan(&l.ID, &l.Name, &l.Address, &l.IsActive, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLocation fetches a location by id, active or not.
func (r *LocationRepo) GetLocation(ctx context.Context, id uint64) (*model.Location, error) {
	const q = `SELECT ` + locationColumns + ` FROM locations WHERE id = ?`
	l, err := scanLocation(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, translate(err)
	}
	return l, nil
}

// List returns locations ordered by name.  With activeOnly set, disabled
// locations are skipped; public endpoints use that form.
func (r *LocationRepo) List(ctx context.Context, activeOnly bool) ([]model.Location, error) {
	q := `SELECT ` + locationColumns + ` FROM locations`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// Create inserts a location and populates its ID.
func (r *LocationRepo) Create(ctx context.Context, l *model.Location) error {
	const q = `INSERT INTO locations (name, address, is_active, created_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, l.Name, l.Address, l.IsActive, l.CreatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// Update overwrites name, address and the active flag.  Locations are
// disabled rather than deleted.
func (r *LocationRepo) Update(ctx context.Context, l *model.Location) error {
	const q = `UPDATE locations SET name = ?, address = ?, is_active = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, l.Name, l.Address, l.IsActive, l.ID)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}
