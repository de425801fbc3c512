package model

import "time"

// LedgerKey identifies one availability row.  The four fields together are
// unique in daily_availability.
type LedgerKey struct {
	LocationID      uint64
	Date            Date
	TimeSlot        string
	TableCategoryID uint64
}

// Availability is one ledger row: how many tables of a category exist and
// how many are still free at a location, date and slot.  The store keeps
// 0 <= AvailableTables <= TotalTables at all times.
type Availability struct {
	ID              uint64    `json:"id"`                // daily_availability.id
	LocationID      uint64    `json:"location_id"`       // daily_availability.location_id
	Date            Date      `json:"date"`              // daily_availability.date
	TimeSlot        string    `json:"time_slot"`         // daily_availability.time_slot
	TableCategoryID uint64    `json:"table_category_id"` // daily_availability.table_category_id
	PaxSize         int       `json:"pax_size,omitempty"`
	TotalTables     int       `json:"total_tables"`     // daily_availability.total_tables
	AvailableTables int       `json:"available_tables"` // daily_availability.available_tables
	IsActive        bool      `json:"is_active"`        // daily_availability.is_active
	UpdatedAt       time.Time `json:"updated_at"`       // daily_availability.updated_at
}

// Key returns the unique key of the row.
func (a Availability) Key() LedgerKey {
	return LedgerKey{
		LocationID:      a.LocationID,
		Date:            a.Date,
		TimeSlot:        a.TimeSlot,
		TableCategoryID: a.TableCategoryID,
	}
}

// OpenSlot is a bookable option returned by the availability query: the
// smallest fitting category with spare tables for a slot.
type OpenSlot struct {
	TimeSlot        string `json:"time_slot"`
	TableCategoryID uint64 `json:"table_category_id"`
	PaxSize         int    `json:"pax_size"`
	AvailabilityID  uint64 `json:"availability_id"`
	AvailableTables int    `json:"available_tables"`
}

// Closure blocks all bookings for a location (or every location when
// LocationID is nil) between StartDate and EndDate inclusive.
type Closure struct {
	ID         uint64    `json:"id"`          // closures.id
	LocationID *uint64   `json:"location_id"` // closures.location_id (NULL = all locations)
	StartDate  Date      `json:"start_date"`  // closures.start_date
	EndDate    Date      `json:"end_date"`    // closures.end_date
	Reason     string    `json:"reason"`      // closures.reason
	CreatedAt  time.Time `json:"created_at"`  // closures.created_at
}

// Covers reports whether the closure applies to the given location and day.
func (c Closure) Covers(locationID uint64, d Date) bool {
	if c.LocationID != nil && *c.LocationID != locationID {
		return false
	}
	return !d.Before(c.StartDate) && !d.After(c.EndDate)
}
