package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Allocation is the ledger unit taken for a booking.
type Allocation struct {
	TableCategoryID uint64
	PaxSize         int
	AvailabilityID  uint64
}

// allocate takes one unit from the smallest active category that seats pax
// guests and still has a free table.  Candidates are tried in ascending
// capacity; a candidate whose conditional decrement loses a race is skipped.
// It must run inside a transaction together with the reservation insert.
func allocate(ctx context.Context, r Repositories, locationID uint64, date model.Date, slot string, pax int) (Allocation, error) {
	cats, err := r.Categories.ActiveCategoriesForPax(ctx, pax)
	if err != nil {
		return Allocation{}, fmt.Errorf("load categories: %w", err)
	}
	for _, cat := range cats {
		row, err := r.Ledger.FindRow(ctx, model.LedgerKey{
			LocationID:      locationID,
			Date:            date,
			TimeSlot:        slot,
			TableCategoryID: cat.ID,
		})
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Allocation{}, fmt.Errorf("find ledger row: %w", err)
		}
		if !row.IsActive || row.AvailableTables <= 0 {
			continue
		}
		ok, err := r.Ledger.TryDecrement(ctx, row.ID)
		if err != nil {
			return Allocation{}, fmt.Errorf("decrement ledger row %d: %w", row.ID, err)
		}
		if ok {
			return Allocation{TableCategoryID: cat.ID, PaxSize: cat.PaxSize, AvailabilityID: row.ID}, nil
		}
	}
	return Allocation{}, ErrNoCapacity
}

// checkOpen returns a *ClosedError when a closure covers the date.
func checkOpen(ctx context.Context, r Repositories, locationID uint64, date model.Date) error {
	c, err := r.Closures.FindClosure(ctx, locationID, date)
	if err != nil {
		return fmt.Errorf("check closures: %w", err)
	}
	if c != nil {
		return &ClosedError{Reason: c.Reason}
	}
	return nil
}

// AvailabilityQuery asks which slots can seat a party.
type AvailabilityQuery struct {
	LocationID   uint64
	Date         model.Date
	RequestedPax int
}

// AvailabilityResult is either a closure notice or the open slots.
type AvailabilityResult struct {
	Closed bool             `json:"closed"`
	Reason string           `json:"reason,omitempty"`
	Slots  []model.OpenSlot `json:"slots"`
}

// Availability lists, per time slot, the smallest category that would be
// allocated for the party right now.
func (e *Engine) Availability(ctx context.Context, q AvailabilityQuery) (AvailabilityResult, error) {
	if q.LocationID == 0 {
		return AvailabilityResult{}, invalid("location_id", "must be positive")
	}
	if q.RequestedPax <= 0 {
		return AvailabilityResult{}, invalid("requested_pax", "must be positive")
	}
	if q.Date.IsZero() {
		return AvailabilityResult{}, invalid("date", "is required")
	}
	repos := e.store.Repos()
	if err := checkOpen(ctx, repos, q.LocationID, q.Date); err != nil {
		var closed *ClosedError
		if errors.As(err, &closed) {
			return AvailabilityResult{Closed: true, Reason: closed.Reason, Slots: []model.OpenSlot{}}, nil
		}
		return AvailabilityResult{}, err
	}
	rows, err := repos.Ledger.OpenRows(ctx, q.LocationID, q.Date, q.RequestedPax)
	if err != nil {
		return AvailabilityResult{}, fmt.Errorf("load open rows: %w", err)
	}
	return AvailabilityResult{Slots: smallestPerSlot(rows)}, nil
}

// smallestPerSlot keeps the first row of each slot.  rows must be ordered
// by slot label and then pax size.
func smallestPerSlot(rows []model.OpenSlot) []model.OpenSlot {
	out := make([]model.OpenSlot, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		key := strings.TrimSpace(r.TimeSlot)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
