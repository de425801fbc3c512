package model

import "time"

// Location is a restaurant branch.  Locations are soft-disabled through
// IsActive and never removed while reservations or ledger rows point at them.
type Location struct {
	ID        uint64    `json:"id"`         // locations.id
	Name      string    `json:"name"`       // locations.name (unique)
	Address   string    `json:"address"`    // locations.address
	IsActive  bool      `json:"is_active"`  // locations.is_active
	CreatedAt time.Time `json:"created_at"` // locations.created_at
}

// TableCategory groups tables by seating capacity.  Ordering categories by
// PaxSize ascending defines best fit during allocation.
type TableCategory struct {
	ID          uint64    `json:"id"`          // table_categories.id
	PaxSize     int       `json:"pax_size"`    // table_categories.pax_size (unique)
	Description string    `json:"description"` // table_categories.description
	IsActive    bool      `json:"is_active"`   // table_categories.is_active
	CreatedAt   time.Time `json:"created_at"`  // table_categories.created_at
}

// TimeSlot is a named sitting such as "18:00-19:00".  Slots are descriptive;
// ledger rows and reservations store the label, not the slot id.
type TimeSlot struct {
	ID        uint64 `json:"id"`         // time_slots.id
	Slot      string `json:"slot"`       // time_slots.slot (unique)
	IsActive  bool   `json:"is_active"`  // time_slots.is_active
	SortOrder int    `json:"sort_order"` // time_slots.sort_order
}
