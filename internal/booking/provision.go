package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
)

// SlotConfig is one (slot, category) pair to provision on every matching day.
type SlotConfig struct {
	TimeSlot        string
	TableCategoryID uint64
	TotalTables     int
	AvailableTables *int
}

// ProvisionRequest expands into ledger rows for each date in
// StartDate..EndDate whose weekday is listed (0 = Sunday), and each slot
// config.  An empty DaysOfWeek list selects every day.
type ProvisionRequest struct {
	LocationID uint64
	StartDate  model.Date
	EndDate    model.Date
	DaysOfWeek []int
	Slots      []SlotConfig
}

type slotKey struct {
	slot     string
	category uint64
}

func (e *Engine) validateProvision(req *ProvisionRequest) (map[time.Weekday]bool, error) {
	switch {
	case req.LocationID == 0:
		return nil, invalid("location_id", "must be positive")
	case req.StartDate.IsZero():
		return nil, invalid("start_date", "is required")
	case req.EndDate.IsZero():
		return nil, invalid("end_date", "is required")
	case req.EndDate.Before(req.StartDate):
		return nil, invalid("end_date", "must not be before start_date")
	case len(req.Slots) == 0:
		return nil, invalid("slots", "at least one slot config is required")
	}
	if span := req.StartDate.DaysUntil(req.EndDate); span > e.cfg.MaxProvisionDays {
		return nil, fmt.Errorf("%w: %d days exceeds the %d day limit", ErrRangeTooLarge, span, e.cfg.MaxProvisionDays)
	}
	days := make(map[time.Weekday]bool, 7)
	for _, d := range req.DaysOfWeek {
		if d < 0 || d > 6 {
			return nil, invalid("days_of_week", fmt.Sprintf("weekday %d out of range 0..6", d))
		}
		days[time.Weekday(d)] = true
	}
	seen := make(map[slotKey]bool, len(req.Slots))
	for i := range req.Slots {
		s := &req.Slots[i]
		s.TimeSlot = strings.TrimSpace(s.TimeSlot)
		field := fmt.Sprintf("slots[%d]", i)
		if len(s.TimeSlot) < 3 {
			return nil, invalid(field+".time_slot", "must be at least 3 characters")
		}
		if s.TableCategoryID == 0 {
			return nil, invalid(field+".table_category_id", "must be positive")
		}
		if s.TotalTables < 0 {
			return nil, invalid(field+".total_tables", "must not be negative")
		}
		if s.AvailableTables != nil && (*s.AvailableTables < 0 || *s.AvailableTables > s.TotalTables) {
			return nil, invalid(field+".available_tables", "must be between 0 and total_tables")
		}
		k := slotKey{s.TimeSlot, s.TableCategoryID}
		if seen[k] {
			return nil, invalid(field, fmt.Sprintf("duplicate slot %q for category %d", s.TimeSlot, s.TableCategoryID))
		}
		seen[k] = true
	}
	return days, nil
}

// Provision upserts one ledger row per matching date and slot config and
// returns how many rows it wrote.  Existing rows get their counts
// overwritten, so re-running a request is idempotent.
func (e *Engine) Provision(ctx context.Context, req ProvisionRequest) (int, error) {
	days, err := e.validateProvision(&req)
	if err != nil {
		return 0, err
	}
	cats := make([]uint64, 0, len(req.Slots))
	for _, s := range req.Slots {
		cats = append(cats, s.TableCategoryID)
	}
	count := 0
	err = e.store.InTx(ctx, func(r Repositories) error {
		count = 0
		if err := requireCatalog(ctx, r, req.LocationID, cats); err != nil {
			return err
		}
		for d := req.StartDate; !d.After(req.EndDate); d = d.AddDays(1) {
			if len(days) > 0 && !days[d.Weekday()] {
				continue
			}
			for _, s := range req.Slots {
				available := s.TotalTables
				if s.AvailableTables != nil {
					available = *s.AvailableTables
				}
				row := &model.Availability{
					LocationID:      req.LocationID,
					Date:            d,
					TimeSlot:        s.TimeSlot,
					TableCategoryID: s.TableCategoryID,
					TotalTables:     s.TotalTables,
					AvailableTables: available,
					IsActive:        true,
				}
				if err := r.Ledger.Upsert(ctx, row); err != nil {
					return fmt.Errorf("upsert %s %s: %w", d, s.TimeSlot, err)
				}
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.log.Info("ledger provisioned",
		zap.Uint64("location_id", req.LocationID),
		zap.String("start_date", req.StartDate.String()),
		zap.String("end_date", req.EndDate.String()),
		zap.Int("rows", count))
	return count, nil
}
