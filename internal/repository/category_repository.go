package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// CategoryRepo provides access to table_categories.
type CategoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryColumns = `id, pax_size, description, is_active, created_at`

func scanCategories(rows *sql.Rows) ([]model.TableCategory, error) {
	defer rows.Close()
	out := []model.TableCategory{}
	for rows.Next() {
		var c model.TableCategory
		if err := rows.Scan(&c.ID, &c.PaxSize, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) GetCategory(ctx context.Context, id uint64) (*model.TableCategory, error) {
	const q = `SELECT ` + categoryColumns + ` FROM table_categories WHERE id = ?`
	var c model.TableCategory
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.PaxSize, &c.Description, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ActiveCategoriesForPax returns the allocation candidates for a party,
// smallest capacity first.
func (r *CategoryRepo) ActiveCategoriesForPax(ctx context.Context, pax int) ([]model.TableCategory, error) {
	const q = `SELECT ` + categoryColumns + ` FROM table_categories
	           WHERE is_active = 1 AND pax_size >= ?
	           ORDER BY pax_size ASC`
	rows, err := r.db.QueryContext(ctx, q, pax)
	if err != nil {
		return nil, err
	}
	return scanCategories(rows)
}

// List returns categories ordered by capacity.
func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]model.TableCategory, error) {
	q := `SELECT ` + categoryColumns + ` FROM table_categories`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY pax_size ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return scanCategories(rows)
}

// Create inserts a category.  A second category with the same pax size is
// rejected with ErrDuplicate.
func (r *CategoryRepo) Create(ctx context.Context, c *model.TableCategory) error {
	const q = `INSERT INTO table_categories (pax_size, description, is_active, created_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.PaxSize, c.Description, c.IsActive, c.CreatedAt)
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

func (r *CategoryRepo) Update(ctx context.Context, c *model.TableCategory) error {
	const q = `UPDATE table_categories SET pax_size = ?, description = ?, is_active = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.PaxSize, c.Description, c.IsActive, c.ID)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

// requireAffected turns an UPDATE or DELETE that matched nothing into
// booking.ErrNotFound.  The DSN sets clientFoundRows so unchanged rows
// still count as matched.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrNotFound
	}
	return nil
}
