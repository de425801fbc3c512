package handler

import (
	"context"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// BookingService is the part of the booking engine the public and admin
// reservation handlers use.
type BookingService interface {
	CreateOnlineBooking(ctx context.Context, req booking.NewBooking) (*model.Reservation, error)
	CreateOfflineBooking(ctx context.Context, req booking.NewBooking, pay booking.OfflinePayment) (*model.Reservation, error)
	ConfirmPayment(ctx context.Context, id uint64, reference string) (*model.Reservation, error)
	FailPayment(ctx context.Context, id uint64) (*model.Reservation, error)
	Cancel(ctx context.Context, code, phone string) (*model.Reservation, error)
	CancelByID(ctx context.Context, id uint64) (*model.Reservation, error)
	MarkNoShow(ctx context.Context, id uint64) (*model.Reservation, error)
	DeleteReservation(ctx context.Context, id uint64) error
	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)
	ReservationByCode(ctx context.Context, code string) (*model.Reservation, error)
	Lookup(ctx context.Context, code, phone string) (*model.Reservation, error)
	ListReservations(ctx context.Context, f booking.ReservationFilter) ([]model.Reservation, error)
	Availability(ctx context.Context, q booking.AvailabilityQuery) (booking.AvailabilityResult, error)
	PaymentURL(code string) string
}

// LedgerService covers operator management of the availability ledger and
// closures.
type LedgerService interface {
	ListLedger(ctx context.Context, f booking.LedgerFilter) ([]model.Availability, error)
	LedgerRow(ctx context.Context, id uint64) (*model.Availability, error)
	UpsertLedgerRow(ctx context.Context, in booking.LedgerRowInput) (*model.Availability, error)
	UpdateLedgerCapacity(ctx context.Context, id uint64, total int, available *int) (*model.Availability, error)
	SetLedgerRowActive(ctx context.Context, id uint64, active bool) error
	DeleteLedgerRow(ctx context.Context, id uint64) error
	Provision(ctx context.Context, req booking.ProvisionRequest) (int, error)
	ListClosures(ctx context.Context) ([]model.Closure, error)
	CreateClosure(ctx context.Context, in booking.ClosureInput) (*model.Closure, error)
	DeleteClosure(ctx context.Context, id uint64) error
}

var (
	_ BookingService = (*booking.Engine)(nil)
	_ LedgerService  = (*booking.Engine)(nil)
)

// LocationStore, CategoryStore and TimeSlotStore are the catalog
// repositories used by the catalog handlers.
type LocationStore interface {
	GetLocation(ctx context.Context, id uint64) (*model.Location, error)
	List(ctx context.Context, activeOnly bool) ([]model.Location, error)
	Create(ctx context.Context, l *model.Location) error
	Update(ctx context.Context, l *model.Location) error
}

type CategoryStore interface {
	GetCategory(ctx context.Context, id uint64) (*model.TableCategory, error)
	List(ctx context.Context, activeOnly bool) ([]model.TableCategory, error)
	Create(ctx context.Context, c *model.TableCategory) error
	Update(ctx context.Context, c *model.TableCategory) error
}

type TimeSlotStore interface {
	List(ctx context.Context, activeOnly bool) ([]model.TimeSlot, error)
	Create(ctx context.Context, s *model.TimeSlot) error
	SetActive(ctx context.Context, id uint64, active bool) error
}

var (
	_ LocationStore = (*repository.LocationRepo)(nil)
	_ CategoryStore = (*repository.CategoryRepo)(nil)
	_ TimeSlotStore = (*repository.TimeSlotRepo)(nil)
)
