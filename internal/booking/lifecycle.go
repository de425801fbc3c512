package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
)

// NewBooking is a booking request after transport decoding.
type NewBooking struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	LocationID    uint64
	Date          model.Date
	TimeSlot      string
	RequestedPax  int
	Source        string
}

// OfflinePayment describes how an operator-entered booking was settled.
// Empty fields fall back to PAID / "OFFLINE".
type OfflinePayment struct {
	PaymentStatus    string
	PaymentReference string
}

func (b *NewBooking) normalize() error {
	b.CustomerName = strings.TrimSpace(b.CustomerName)
	b.CustomerPhone = strings.TrimSpace(b.CustomerPhone)
	b.CustomerEmail = strings.TrimSpace(b.CustomerEmail)
	b.TimeSlot = strings.TrimSpace(b.TimeSlot)
	b.Source = strings.ToUpper(strings.TrimSpace(b.Source))
	switch {
	case len([]rune(b.CustomerName)) < 2:
		return invalid("customer_name", "must be at least 2 characters")
	case len(b.CustomerPhone) < 6:
		return invalid("customer_phone", "must be at least 6 characters")
	case b.LocationID == 0:
		return invalid("location_id", "must be positive")
	case b.Date.IsZero():
		return invalid("date", "is required")
	case len(b.TimeSlot) < 3:
		return invalid("time_slot", "must be at least 3 characters")
	case b.RequestedPax <= 0:
		return invalid("requested_pax", "must be positive")
	}
	if b.Source == "" {
		b.Source = model.SourceWhatsApp
	}
	if !model.ValidSource(b.Source) {
		return invalid("source", "must be one of WHATSAPP, OFFLINE, PHONE_CALL")
	}
	return nil
}

// CreateOnlineBooking allocates a table and records a reservation awaiting
// payment.
func (e *Engine) CreateOnlineBooking(ctx context.Context, req NewBooking) (*model.Reservation, error) {
	return e.createBooking(ctx, req, model.StatusPendingPayment, model.PaymentUnpaid, nil)
}

// CreateOfflineBooking allocates a table for a booking taken by staff.  The
// reservation is confirmed immediately.
func (e *Engine) CreateOfflineBooking(ctx context.Context, req NewBooking, pay OfflinePayment) (*model.Reservation, error) {
	status := strings.ToUpper(strings.TrimSpace(pay.PaymentStatus))
	if status == "" {
		status = model.PaymentPaid
	}
	if status != model.PaymentPaid && status != model.PaymentUnpaid {
		return nil, invalid("payment_status", "must be PAID or UNPAID")
	}
	ref := strings.TrimSpace(pay.PaymentReference)
	if ref == "" {
		ref = model.OfflinePaymentReference
	}
	if strings.TrimSpace(req.Source) == "" {
		req.Source = model.SourceOffline
	}
	res, err := e.createBooking(ctx, req, model.StatusConfirmed, status, &ref)
	if err != nil {
		return nil, err
	}
	e.notify(res)
	return res, nil
}

func (e *Engine) createBooking(ctx context.Context, req NewBooking, status, payment string, ref *string) (*model.Reservation, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	var out *model.Reservation
	err := e.store.InTx(ctx, func(r Repositories) error {
		loc, err := r.Locations.GetLocation(ctx, req.LocationID)
		if errors.Is(err, ErrNotFound) || (err == nil && !loc.IsActive) {
			return invalid("location_id", "unknown or inactive location")
		}
		if err != nil {
			return fmt.Errorf("load location: %w", err)
		}
		if err := checkOpen(ctx, r, req.LocationID, req.Date); err != nil {
			return err
		}
		alloc, err := allocate(ctx, r, req.LocationID, req.Date, req.TimeSlot, req.RequestedPax)
		if err != nil {
			return err
		}
		rowID := alloc.AvailabilityID
		res := &model.Reservation{
			BookingCode:      placeholderCode(),
			CustomerName:     req.CustomerName,
			CustomerPhone:    req.CustomerPhone,
			LocationID:       req.LocationID,
			Date:             req.Date,
			TimeSlot:         req.TimeSlot,
			RequestedPax:     req.RequestedPax,
			TableCategoryID:  alloc.TableCategoryID,
			AvailabilityID:   &rowID,
			Status:           status,
			PaymentStatus:    payment,
			PaymentReference: ref,
			Source:           req.Source,
			CreatedAt:        e.now().UTC(),
		}
		if req.CustomerEmail != "" {
			email := req.CustomerEmail
			res.CustomerEmail = &email
		}
		res.UpdatedAt = res.CreatedAt
		if err := r.Reservations.Create(ctx, res); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		res.BookingCode = FormatCode(e.cfg.CodePrefix, res.CreatedAt, res.ID)
		if err := r.Reservations.SetBookingCode(ctx, res.ID, res.BookingCode); err != nil {
			return fmt.Errorf("assign booking code: %w", err)
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("reservation created",
		zap.String("booking_code", out.BookingCode),
		zap.String("status", out.Status),
		zap.Uint64("availability_id", *out.AvailabilityID),
		zap.Int("requested_pax", out.RequestedPax))
	return out, nil
}

// ConfirmPayment marks a reservation paid and confirmed.  Confirming an
// already confirmed reservation only replaces the payment reference.
func (e *Engine) ConfirmPayment(ctx context.Context, id uint64, reference string) (*model.Reservation, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, invalid("payment_reference", "is required")
	}
	res, err := e.transition(ctx, id, func(_ Repositories, res *model.Reservation) (bool, error) {
		if res.Status != model.StatusPendingPayment && res.Status != model.StatusConfirmed {
			return false, fmt.Errorf("%w: cannot confirm payment of %s reservation", ErrInvalidTransition, res.Status)
		}
		res.Status = model.StatusConfirmed
		res.PaymentStatus = model.PaymentPaid
		res.PaymentReference = &reference
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	e.notify(res)
	return res, nil
}

// FailPayment marks a pending reservation's payment as failed and returns
// its table to the ledger.  Repeating the call has no further effect.
func (e *Engine) FailPayment(ctx context.Context, id uint64) (*model.Reservation, error) {
	changed := false
	res, err := e.transition(ctx, id, func(r Repositories, res *model.Reservation) (bool, error) {
		changed = false
		switch res.Status {
		case model.StatusPaymentFailed:
			return false, nil
		case model.StatusPendingPayment:
		default:
			return false, fmt.Errorf("%w: cannot fail payment of %s reservation", ErrInvalidTransition, res.Status)
		}
		if err := e.release(ctx, r, res); err != nil {
			return false, err
		}
		res.Status = model.StatusPaymentFailed
		res.PaymentStatus = model.PaymentFailed
		changed = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		e.notify(res)
	}
	return res, nil
}

// Cancel cancels the reservation identified by booking code and phone.  A
// phone that does not match is reported as ErrNotFound.
func (e *Engine) Cancel(ctx context.Context, code, phone string) (*model.Reservation, error) {
	code, err := e.checkCode(code)
	if err != nil {
		return nil, err
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, invalid("phone", "is required")
	}
	var out *model.Reservation
	err = e.store.InTx(ctx, func(r Repositories) error {
		res, err := r.Reservations.LockByCode(ctx, code)
		if err != nil {
			return err
		}
		if res.CustomerPhone != phone {
			return ErrNotFound
		}
		if err := e.cancelLocked(ctx, r, res); err != nil {
			return err
		}
		res.UpdatedAt = e.now().UTC()
		if err := r.Reservations.SaveState(ctx, res); err != nil {
			return fmt.Errorf("save reservation %d: %w", res.ID, err)
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.notify(out)
	return out, nil
}

// CancelByID cancels a reservation on behalf of an operator.
func (e *Engine) CancelByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := e.transition(ctx, id, func(r Repositories, res *model.Reservation) (bool, error) {
		return true, e.cancelLocked(ctx, r, res)
	})
	if err != nil {
		return nil, err
	}
	e.notify(res)
	return res, nil
}

func (e *Engine) cancelLocked(ctx context.Context, r Repositories, res *model.Reservation) error {
	if res.Status == model.StatusCancelled {
		return ErrAlreadyCancelled
	}
	if err := e.release(ctx, r, res); err != nil {
		return err
	}
	res.Status = model.StatusCancelled
	if res.PaymentStatus == model.PaymentPaid {
		res.PaymentStatus = model.PaymentRefunded
	}
	return nil
}

// MarkNoShow records that a confirmed party never arrived.  The table unit
// stays consumed.
func (e *Engine) MarkNoShow(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := e.transition(ctx, id, func(_ Repositories, res *model.Reservation) (bool, error) {
		if res.Status != model.StatusConfirmed {
			return false, fmt.Errorf("%w: only confirmed reservations can be marked no-show", ErrInvalidTransition)
		}
		res.Status = model.StatusNoShow
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	e.notify(res)
	return res, nil
}

// DeleteReservation physically removes a reservation as an operator data
// correction.  A live reservation's table is returned to the ledger in the
// same transaction; no-show and terminal reservations have nothing to give
// back.
func (e *Engine) DeleteReservation(ctx context.Context, id uint64) error {
	if id == 0 {
		return invalid("id", "must be positive")
	}
	var deleted *model.Reservation
	err := e.store.InTx(ctx, func(r Repositories) error {
		res, err := r.Reservations.Lock(ctx, id)
		if err != nil {
			return err
		}
		if res.Live() {
			if err := e.release(ctx, r, res); err != nil {
				return err
			}
		}
		if err := r.Reservations.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete reservation %d: %w", id, err)
		}
		deleted = res
		return nil
	})
	if err != nil {
		return err
	}
	e.log.Info("reservation deleted",
		zap.Uint64("reservation_id", deleted.ID),
		zap.String("booking_code", deleted.BookingCode),
		zap.String("status", deleted.Status),
		zap.Bool("needs_reconciliation", deleted.NeedsReconciliation))
	return nil
}

// transition locks a reservation, applies fn and saves the result when fn
// reports a change.  Everything happens in one transaction.
func (e *Engine) transition(ctx context.Context, id uint64, fn func(r Repositories, res *model.Reservation) (bool, error)) (*model.Reservation, error) {
	if id == 0 {
		return nil, invalid("id", "must be positive")
	}
	var out *model.Reservation
	err := e.store.InTx(ctx, func(r Repositories) error {
		res, err := r.Reservations.Lock(ctx, id)
		if err != nil {
			return err
		}
		save, err := fn(r, res)
		if err != nil {
			return err
		}
		if save {
			res.UpdatedAt = e.now().UTC()
			if err := r.Reservations.SaveState(ctx, res); err != nil {
				return fmt.Errorf("save reservation %d: %w", res.ID, err)
			}
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// release returns the reservation's unit to the row it was drawn from and
// detaches the row.  A row deleted in the meantime has nothing to return.
// When the row can no longer take the unit back (an operator lowered its
// total) the reservation is flagged for reconciliation and the transition
// proceeds.
func (e *Engine) release(ctx context.Context, r Repositories, res *model.Reservation) error {
	if res.AvailabilityID == nil {
		return nil
	}
	rowID := *res.AvailabilityID
	err := r.Ledger.Adjust(ctx, rowID, 1)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		e.log.Warn("released unit to missing ledger row",
			zap.Uint64("reservation_id", res.ID), zap.Uint64("availability_id", rowID))
	case errors.Is(err, ErrCapacityViolation):
		res.NeedsReconciliation = true
		e.log.Error("ledger refused released unit; reservation flagged for reconciliation",
			zap.Uint64("reservation_id", res.ID), zap.Uint64("availability_id", rowID))
	default:
		return fmt.Errorf("release unit to row %d: %w", rowID, err)
	}
	res.AvailabilityID = nil
	return nil
}

// GetReservation returns a reservation by id.
func (e *Engine) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return e.store.Repos().Reservations.Get(ctx, id)
}

// ReservationByCode returns the reservation with the given booking code.
func (e *Engine) ReservationByCode(ctx context.Context, code string) (*model.Reservation, error) {
	code, err := e.checkCode(code)
	if err != nil {
		return nil, err
	}
	return e.store.Repos().Reservations.GetByCode(ctx, code)
}

// checkCode normalizes a customer-supplied booking code and rejects codes
// this engine could never have issued.
func (e *Engine) checkCode(code string) (string, error) {
	code = NormalizeCode(code)
	if code == "" {
		return "", invalid("booking_code", "is required")
	}
	if _, err := ParseCode(e.cfg.CodePrefix, code); err != nil {
		return "", err
	}
	return code, nil
}

// Lookup returns the reservation when code and phone both match.
func (e *Engine) Lookup(ctx context.Context, code, phone string) (*model.Reservation, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, invalid("phone", "is required")
	}
	res, err := e.ReservationByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if res.CustomerPhone != phone {
		return nil, ErrNotFound
	}
	return res, nil
}

// ListReservations lists reservations for operators, newest first.
func (e *Engine) ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return e.store.Repos().Reservations.List(ctx, f)
}
