package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
)

// LedgerRowInput creates or overwrites a single availability row.  A nil
// AvailableTables defaults to TotalTables.
type LedgerRowInput struct {
	LocationID      uint64
	Date            model.Date
	TimeSlot        string
	TableCategoryID uint64
	TotalTables     int
	AvailableTables *int
	IsActive        *bool
}

// ListLedger returns ledger rows for operators.
func (e *Engine) ListLedger(ctx context.Context, f LedgerFilter) ([]model.Availability, error) {
	return e.store.Repos().Ledger.List(ctx, f)
}

// LedgerRow returns one availability row.
func (e *Engine) LedgerRow(ctx context.Context, id uint64) (*model.Availability, error) {
	return e.store.Repos().Ledger.GetRow(ctx, id)
}

// UpsertLedgerRow creates the row for the key or overwrites its counts.
// Operator edits are last-writer-wins.
func (e *Engine) UpsertLedgerRow(ctx context.Context, in LedgerRowInput) (*model.Availability, error) {
	in.TimeSlot = strings.TrimSpace(in.TimeSlot)
	switch {
	case in.LocationID == 0:
		return nil, invalid("location_id", "must be positive")
	case in.TableCategoryID == 0:
		return nil, invalid("table_category_id", "must be positive")
	case in.Date.IsZero():
		return nil, invalid("date", "is required")
	case len(in.TimeSlot) < 3:
		return nil, invalid("time_slot", "must be at least 3 characters")
	case in.TotalTables < 0:
		return nil, invalid("total_tables", "must not be negative")
	}
	available := in.TotalTables
	if in.AvailableTables != nil {
		available = *in.AvailableTables
	}
	if available < 0 {
		return nil, invalid("available_tables", "must not be negative")
	}
	if available > in.TotalTables {
		return nil, ErrInvalidCapacity
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	row := &model.Availability{
		LocationID:      in.LocationID,
		Date:            in.Date,
		TimeSlot:        in.TimeSlot,
		TableCategoryID: in.TableCategoryID,
		TotalTables:     in.TotalTables,
		AvailableTables: available,
		IsActive:        active,
	}
	err := e.store.InTx(ctx, func(r Repositories) error {
		if err := requireCatalog(ctx, r, in.LocationID, []uint64{in.TableCategoryID}); err != nil {
			return err
		}
		return r.Ledger.Upsert(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// UpdateLedgerCapacity sets a row's total and, optionally, its available
// count.  When only the total changes, available is clamped to the new
// total.  The edit fails with ErrInvalidCapacity if available would exceed
// total.
func (e *Engine) UpdateLedgerCapacity(ctx context.Context, id uint64, total int, available *int) (*model.Availability, error) {
	if total < 0 {
		return nil, invalid("total_tables", "must not be negative")
	}
	if available != nil && *available < 0 {
		return nil, invalid("available_tables", "must not be negative")
	}
	var out *model.Availability
	err := e.store.InTx(ctx, func(r Repositories) error {
		row, err := r.Ledger.LockRow(ctx, id)
		if err != nil {
			return err
		}
		next := min(row.AvailableTables, total)
		if available != nil {
			next = *available
		}
		if next > total {
			return ErrInvalidCapacity
		}
		if err := r.Ledger.SetCapacity(ctx, id, total, next); err != nil {
			return err
		}
		row.TotalTables = total
		row.AvailableTables = next
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("ledger capacity updated",
		zap.Uint64("availability_id", id),
		zap.Int("total_tables", out.TotalTables),
		zap.Int("available_tables", out.AvailableTables))
	return out, nil
}

// SetLedgerRowActive enables or disables allocation from a row.
func (e *Engine) SetLedgerRowActive(ctx context.Context, id uint64, active bool) error {
	return e.store.InTx(ctx, func(r Repositories) error {
		if _, err := r.Ledger.LockRow(ctx, id); err != nil {
			return err
		}
		return r.Ledger.SetActive(ctx, id, active)
	})
}

// DeleteLedgerRow removes a row no live reservation draws from.
func (e *Engine) DeleteLedgerRow(ctx context.Context, id uint64) error {
	return e.store.InTx(ctx, func(r Repositories) error {
		if _, err := r.Ledger.LockRow(ctx, id); err != nil {
			return err
		}
		n, err := r.Reservations.CountLive(ctx, id)
		if err != nil {
			return fmt.Errorf("count live reservations: %w", err)
		}
		if n > 0 {
			return ErrRowInUse
		}
		return r.Ledger.Delete(ctx, id)
	})
}

// requireCatalog checks that the location and categories exist.
func requireCatalog(ctx context.Context, r Repositories, locationID uint64, categoryIDs []uint64) error {
	if _, err := r.Locations.GetLocation(ctx, locationID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalid("location_id", "unknown location")
		}
		return fmt.Errorf("load location: %w", err)
	}
	for _, id := range categoryIDs {
		if _, err := r.Categories.GetCategory(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return invalid("table_category_id", fmt.Sprintf("unknown table category %d", id))
			}
			return fmt.Errorf("load category: %w", err)
		}
	}
	return nil
}
