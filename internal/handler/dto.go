package handler

import (
	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// Request bodies.  Struct tags catch malformed input early; the engine
// re-checks every rule it depends on.

type createReservationRequest struct {
	CustomerName  string     `json:"customer_name" validate:"required,min=2,max=120"`
	CustomerPhone string     `json:"customer_phone" validate:"required,min=6,max=32"`
	CustomerEmail string     `json:"customer_email" validate:"omitempty,email,max=190"`
	LocationID    uint64     `json:"location_id" validate:"gt=0"`
	Date          model.Date `json:"date"`
	TimeSlot      string     `json:"time_slot" validate:"required,min=3,max=32"`
	RequestedPax  int        `json:"requested_pax" validate:"gt=0"`
	Source        string     `json:"source" validate:"omitempty,max=16"`
}

func (r createReservationRequest) toBooking() booking.NewBooking {
	return booking.NewBooking{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CustomerEmail: r.CustomerEmail,
		LocationID:    r.LocationID,
		Date:          r.Date,
		TimeSlot:      r.TimeSlot,
		RequestedPax:  r.RequestedPax,
		Source:        r.Source,
	}
}

type offlineReservationRequest struct {
	createReservationRequest
	PaymentStatus    string `json:"payment_status" validate:"omitempty,oneof=PAID UNPAID paid unpaid"`
	PaymentReference string `json:"payment_reference" validate:"omitempty,max=64"`
}

type paymentRequest struct {
	BookingCode string `json:"booking_code" validate:"required"`
	Action      string `json:"action" validate:"required,oneof=success failure"`
}

type manageRequest struct {
	BookingCode string `json:"booking_code" validate:"required"`
	Phone       string `json:"phone" validate:"required,min=6"`
}

type ledgerRowRequest struct {
	LocationID      uint64     `json:"location_id" validate:"gt=0"`
	Date            model.Date `json:"date"`
	TimeSlot        string     `json:"time_slot" validate:"required,min=3,max=32"`
	TableCategoryID uint64     `json:"table_category_id" validate:"gt=0"`
	TotalTables     int        `json:"total_tables" validate:"gte=0"`
	AvailableTables *int       `json:"available_tables" validate:"omitempty,gte=0"`
	IsActive        *bool      `json:"is_active"`
}

type capacityRequest struct {
	TotalTables     *int `json:"total_tables" validate:"required,gte=0"`
	AvailableTables *int `json:"available_tables" validate:"omitempty,gte=0"`
}

type activeRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type slotConfigRequest struct {
	TimeSlot        string `json:"time_slot" validate:"required,min=3,max=32"`
	TableCategoryID uint64 `json:"table_category_id" validate:"gt=0"`
	TotalTables     int    `json:"total_tables" validate:"gte=0"`
	AvailableTables *int   `json:"available_tables" validate:"omitempty,gte=0"`
}

type provisionRequest struct {
	LocationID uint64              `json:"location_id" validate:"gt=0"`
	StartDate  model.Date          `json:"start_date"`
	EndDate    model.Date          `json:"end_date"`
	DaysOfWeek []int               `json:"days_of_week" validate:"omitempty,dive,min=0,max=6"`
	Slots      []slotConfigRequest `json:"slots" validate:"required,min=1,dive"`
}

func (r provisionRequest) toProvision() booking.ProvisionRequest {
	slots := make([]booking.SlotConfig, 0, len(r.Slots))
	for _, s := range r.Slots {
		slots = append(slots, booking.SlotConfig{
			TimeSlot:        s.TimeSlot,
			TableCategoryID: s.TableCategoryID,
			TotalTables:     s.TotalTables,
			AvailableTables: s.AvailableTables,
		})
	}
	return booking.ProvisionRequest{
		LocationID: r.LocationID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		DaysOfWeek: r.DaysOfWeek,
		Slots:      slots,
	}
}

type closureRequest struct {
	LocationID *uint64    `json:"location_id" validate:"omitempty,gt=0"`
	StartDate  model.Date `json:"start_date"`
	EndDate    model.Date `json:"end_date"`
	Reason     string     `json:"reason" validate:"required,max=255"`
}

type locationRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Address  string `json:"address" validate:"max=255"`
	IsActive *bool  `json:"is_active"`
}

type categoryRequest struct {
	PaxSize     int    `json:"pax_size" validate:"gt=0,lte=50"`
	Description string `json:"description" validate:"max=255"`
	IsActive    *bool  `json:"is_active"`
}

type timeSlotRequest struct {
	Slot string `json:"slot" validate:"required,min=3,max=32"`
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
