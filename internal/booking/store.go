package booking

import (
	"context"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Locations reads the location catalog.
type Locations interface {
	GetLocation(ctx context.Context, id uint64) (*model.Location, error)
}

// Categories reads the table category catalog.
type Categories interface {
	GetCategory(ctx context.Context, id uint64) (*model.TableCategory, error)
	// ActiveCategoriesForPax returns active categories seating at least pax
	// guests, smallest first.
	ActiveCategoriesForPax(ctx context.Context, pax int) ([]model.TableCategory, error)
}

// LedgerFilter narrows ledger listings.  Zero values match everything.
type LedgerFilter struct {
	LocationID uint64
	Date       *model.Date
}

// Ledger persists availability rows.  Implementations return ErrNotFound for
// missing rows.
type Ledger interface {
	FindRow(ctx context.Context, key model.LedgerKey) (*model.Availability, error)
	GetRow(ctx context.Context, id uint64) (*model.Availability, error)
	// LockRow reads a row and holds it against concurrent writers until the
	// surrounding transaction ends.
	LockRow(ctx context.Context, id uint64) (*model.Availability, error)
	// TryDecrement takes one unit from an active row with spare capacity.
	// It reports false when the conditional update matched nothing.
	TryDecrement(ctx context.Context, id uint64) (bool, error)
	// Adjust adds delta to available_tables only if the result stays within
	// [0, total_tables]; otherwise it returns ErrCapacityViolation.
	Adjust(ctx context.Context, id uint64, delta int) error
	// Upsert inserts the row or overwrites total/available/active of the row
	// with the same key, and sets row.ID.
	Upsert(ctx context.Context, row *model.Availability) error
	SetCapacity(ctx context.Context, id uint64, total, available int) error
	SetActive(ctx context.Context, id uint64, active bool) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, f LedgerFilter) ([]model.Availability, error)
	// OpenRows returns active rows with spare tables whose active category
	// seats at least pax, ordered by slot label then pax size.
	OpenRows(ctx context.Context, locationID uint64, date model.Date, pax int) ([]model.OpenSlot, error)
}

// Closures persists the closure registry.
type Closures interface {
	// FindClosure returns the first closure covering the location and date,
	// or nil when the location is open.
	FindClosure(ctx context.Context, locationID uint64, date model.Date) (*model.Closure, error)
	ListClosures(ctx context.Context) ([]model.Closure, error)
	CreateClosure(ctx context.Context, c *model.Closure) error
	DeleteClosure(ctx context.Context, id uint64) error
}

// ReservationFilter narrows operator reservation listings.
type ReservationFilter struct {
	LocationID uint64
	Date       *model.Date
	Status     string
	Limit      int
	Offset     int
}

// Reservations persists reservations.  Lock* methods hold the row until the
// surrounding transaction ends.
type Reservations interface {
	Create(ctx context.Context, r *model.Reservation) error
	SetBookingCode(ctx context.Context, id uint64, code string) error
	Get(ctx context.Context, id uint64) (*model.Reservation, error)
	GetByCode(ctx context.Context, code string) (*model.Reservation, error)
	Lock(ctx context.Context, id uint64) (*model.Reservation, error)
	LockByCode(ctx context.Context, code string) (*model.Reservation, error)
	// SaveState writes status, payment status, payment reference,
	// availability id and the reconciliation flag.
	SaveState(ctx context.Context, r *model.Reservation) error
	// CountLive counts PENDING_PAYMENT and CONFIRMED reservations drawing
	// from the ledger row.
	CountLive(ctx context.Context, availabilityID uint64) (int, error)
	List(ctx context.Context, f ReservationFilter) ([]model.Reservation, error)
	Delete(ctx context.Context, id uint64) error
}

// Repositories bundles the repositories bound to one connection or
// transaction.
type Repositories struct {
	Locations    Locations
	Categories   Categories
	Ledger       Ledger
	Closures     Closures
	Reservations Reservations
}

// Store hands out repositories and runs units of work atomically.  InTx
// commits when fn returns nil and rolls back otherwise; it may retry fn
// after a transient conflict, so fn must not have side effects outside
// the repositories it receives.
type Store interface {
	Repos() Repositories
	InTx(ctx context.Context, fn func(r Repositories) error) error
}

// Notifier delivers lifecycle events to the outside world.  Delivery is
// best-effort and never affects the committed reservation.
type Notifier interface {
	Notify(ctx context.Context, ev model.StatusEvent) error
}

// Config tunes the engine.
type Config struct {
	CodePrefix       string        // booking code prefix, "RB"
	MaxProvisionDays int           // longest bulk provisioning span in days
	PaymentURLBase   string        // payment page base, booking code is appended
	NotifyTimeout    time.Duration // per-event delivery timeout
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		CodePrefix:       "RB",
		MaxProvisionDays: 90,
		PaymentURLBase:   "/payment/",
		NotifyTimeout:    5 * time.Second,
	}
}
