package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/booking"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store opens transactions on a MySQL pool and hands out repositories bound
// to the pool or to the open transaction.
type Store struct {
	db         *sql.DB
	log        *zap.Logger
	maxRetries int
}

var _ booking.Store = (*Store)(nil)

// NewStore returns a Store that retries a transaction up to three times when
// MySQL reports a deadlock or lock wait timeout.
func NewStore(db *sql.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log, maxRetries: 3}
}

// DB exposes the pool for health checks and catalog repositories.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Repos() booking.Repositories { return reposOn(s.db) }

func reposOn(q DBTX) booking.Repositories {
	return booking.Repositories{
		Locations:    NewLocationRepo(q),
		Categories:   NewCategoryRepo(q),
		Ledger:       NewAvailabilityRepo(q),
		Closures:     NewClosureRepo(q),
		Reservations: NewReservationRepo(q),
	}
}

// InTx runs fn inside a transaction.  The transaction commits when fn
// returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(r booking.Repositories) error) error {
	for attempt := 0; ; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil || !isRetryable(err) || attempt >= s.maxRetries {
			return err
		}
		s.log.Warn("transaction conflict, retrying",
			zap.Int("attempt", attempt+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
}

func (s *Store) runTx(ctx context.Context, fn func(r booking.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(reposOn(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}
