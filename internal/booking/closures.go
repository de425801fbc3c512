package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ClosureInput describes a new closure.  A nil LocationID closes every
// location.
type ClosureInput struct {
	LocationID *uint64
	StartDate  model.Date
	EndDate    model.Date
	Reason     string
}

func (e *Engine) ListClosures(ctx context.Context) ([]model.Closure, error) {
	return e.store.Repos().Closures.ListClosures(ctx)
}

// CreateClosure registers a closure covering StartDate..EndDate inclusive.
func (e *Engine) CreateClosure(ctx context.Context, in ClosureInput) (*model.Closure, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	switch {
	case in.StartDate.IsZero():
		return nil, invalid("start_date", "is required")
	case in.EndDate.IsZero():
		return nil, invalid("end_date", "is required")
	case in.EndDate.Before(in.StartDate):
		return nil, invalid("end_date", "must not be before start_date")
	case in.Reason == "":
		return nil, invalid("reason", "is required")
	case in.LocationID != nil && *in.LocationID == 0:
		in.LocationID = nil
	}
	if in.LocationID != nil {
		if _, err := e.store.Repos().Locations.GetLocation(ctx, *in.LocationID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, invalid("location_id", "unknown location")
			}
			return nil, fmt.Errorf("load location: %w", err)
		}
	}
	c := &model.Closure{
		LocationID: in.LocationID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Reason:     in.Reason,
		CreatedAt:  e.now().UTC(),
	}
	if err := e.store.Repos().Closures.CreateClosure(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteClosure removes a closure.  Deleting a missing closure succeeds.
func (e *Engine) DeleteClosure(ctx context.Context, id uint64) error {
	return e.store.Repos().Closures.DeleteClosure(ctx, id)
}
