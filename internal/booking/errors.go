// Package booking implements the table inventory and allocation engine:
// the availability ledger, closure checks, best-fit allocation, booking
// codes, the reservation lifecycle and bulk ledger provisioning.
package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine.  Handlers translate them into
// HTTP status codes; callers should compare with errors.Is.
var (
	// ErrValidation marks malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
	// ErrClosed is returned when a booking targets a closed date.
	ErrClosed = errors.New("location closed")
	// ErrNoCapacity is returned when no fitting category has a free table.
	ErrNoCapacity = errors.New("no table available")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyCancelled is returned when cancelling a cancelled reservation.
	ErrAlreadyCancelled = errors.New("reservation already cancelled")
	// ErrCapacityViolation means a ledger adjustment would leave
	// available_tables outside [0, total_tables].
	ErrCapacityViolation = errors.New("capacity violation")
	// ErrInvalidCapacity means an operator edit left available above total.
	ErrInvalidCapacity = errors.New("available tables exceed total tables")
	// ErrRowInUse blocks deleting a ledger row that live reservations reference.
	ErrRowInUse = errors.New("availability row in use")
	// ErrRangeTooLarge is returned when a provisioning range is too long.
	ErrRangeTooLarge = errors.New("date range too large")
	// ErrInvalidTransition is returned for a status change the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError names the offending field.  It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

// ClosedError carries the reason of the closure that blocked a booking.
// It matches ErrClosed.
type ClosedError struct {
	Reason string
}

func (e *ClosedError) Error() string {
	if e.Reason == "" {
		return ErrClosed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrClosed.Error(), e.Reason)
}

func (e *ClosedError) Is(target error) bool { return target == ErrClosed }
