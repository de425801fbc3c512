package repository

import (
	"context"

	"github.com/iliyamo/table-reservation/internal/model"
)

// TimeSlotRepo manages the time_slots catalog.  Slots are labels only; the
// ledger stores the label text.
type TimeSlotRepo struct {
	db DBTX
}

func NewTimeSlotRepo(db DBTX) *TimeSlotRepo { return &TimeSlotRepo{db: db} }

// List returns slots in display order.
func (r *TimeSlotRepo) List(ctx context.Context, activeOnly bool) ([]model.TimeSlot, error) {
	q := `SELECT id, slot, is_active, sort_order FROM time_slots`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY sort_order, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TimeSlot{}
	for rows.Next() {
		var s model.TimeSlot
		if err := rows.Scan(&s.ID, &s.Slot, &s.IsActive, &s.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create appends a slot after the current last one.  Duplicate labels are
// rejected with ErrDuplicate.
func (r *TimeSlotRepo) Create(ctx context.Context, s *model.TimeSlot) error {
	const q = `INSERT INTO time_slots (slot, is_active, sort_order)
	           SELECT ?, 1, COALESCE(MAX(sort_order), 0) + 1 FROM time_slots`
	res, err := r.db.ExecContext(ctx, q, s.Slot)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.IsActive = true
	return translate(r.db.QueryRowContext(ctx, `SELECT sort_order FROM time_slots WHERE id = ?`, s.ID).Scan(&s.SortOrder))
}

func (r *TimeSlotRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE time_slots SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
