package model

import "time"

// Reservation statuses.
const (
	StatusPendingPayment = "PENDING_PAYMENT"
	StatusConfirmed      = "CONFIRMED"
	StatusPaymentFailed  = "PAYMENT_FAILED"
	StatusCancelled      = "CANCELLED"
	StatusNoShow         = "NO_SHOW"
)

// Payment statuses.
const (
	PaymentUnpaid   = "UNPAID"
	PaymentPaid     = "PAID"
	PaymentFailed   = "FAILED"
	PaymentRefunded = "REFUNDED"
)

// Booking sources.
const (
	SourceWhatsApp  = "WHATSAPP"
	SourceOffline   = "OFFLINE"
	SourcePhoneCall = "PHONE_CALL"
)

// OfflinePaymentReference is stored on offline bookings settled at the venue.
const OfflinePaymentReference = "OFFLINE"

// ValidSource reports whether s is a known booking source.
func ValidSource(s string) bool {
	switch s {
	case SourceWhatsApp, SourceOffline, SourcePhoneCall:
		return true
	}
	return false
}

// Reservation is a customer's claim on one table unit for a location, date
// and time slot.
//
// Fields:
//
//	BookingCode         – public identifier derived from ID, e.g. RB25-00042.
//	RequestedPax        – party size asked for by the customer.
//	TableCategoryID     – category the table was actually drawn from.
//	AvailabilityID      – ledger row holding the unit; nil once released.
//	NeedsReconciliation – set when a release could not be applied to the ledger.
type Reservation struct {
	ID                  uint64    `json:"id"`                   // reservations.id
	BookingCode         string    `json:"booking_code"`         // reservations.booking_code
	CustomerName        string    `json:"customer_name"`        // reservations.customer_name
	CustomerPhone       string    `json:"customer_phone"`       // reservations.customer_phone
	CustomerEmail       *string   `json:"customer_email"`       // reservations.customer_email (nullable)
	LocationID          uint64    `json:"location_id"`          // reservations.location_id
	Date                Date      `json:"date"`                 // reservations.date
	TimeSlot            string    `json:"time_slot"`            // reservations.time_slot
	RequestedPax        int       `json:"requested_pax"`        // reservations.requested_pax
	TableCategoryID     uint64    `json:"table_category_id"`    // reservations.table_category_id
	AvailabilityID      *uint64   `json:"availability_id"`      // reservations.availability_id (nullable)
	Status              string    `json:"status"`               // reservations.status
	PaymentStatus       string    `json:"payment_status"`       // reservations.payment_status
	PaymentReference    *string   `json:"payment_reference"`    // reservations.payment_reference (nullable)
	Source              string    `json:"source"`               // reservations.source
	NeedsReconciliation bool      `json:"needs_reconciliation"` // reservations.needs_reconciliation
	CreatedAt           time.Time `json:"created_at"`           // reservations.created_at
	UpdatedAt           time.Time `json:"updated_at"`           // reservations.updated_at
}

// Live reports whether the reservation still holds (or may still hold) a
// table unit.
func (r Reservation) Live() bool {
	return r.Status == StatusPendingPayment || r.Status == StatusConfirmed
}

// StatusEvent is the payload delivered to the notification sink after a
// reservation changes state.
type StatusEvent struct {
	BookingCode   string    `json:"bookingCode"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// EventFor builds the status event for r.
func EventFor(r *Reservation, at time.Time) StatusEvent {
	return StatusEvent{
		BookingCode:   r.BookingCode,
		Status:        r.Status,
		PaymentStatus: r.PaymentStatus,
		OccurredAt:    at.UTC(),
	}
}
