package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/booking"
)

var decrementQuery = regexp.QuoteMeta("SET available_tables = available_tables - 1")

func TestStore_InTx_Commits(t *testing.T) {
	db, mock := newMock(t)
	store := NewStore(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(decrementQuery).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.InTx(context.Background(), func(r booking.Repositories) error {
		ok, err := r.Ledger.TryDecrement(context.Background(), 5)
		require.True(t, ok)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InTx_RollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	store := NewStore(db, zap.NewNop())
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(decrementQuery).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := store.InTx(context.Background(), func(r booking.Repositories) error {
		if _, err := r.Ledger.TryDecrement(context.Background(), 5); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InTx_RetriesDeadlock(t *testing.T) {
	db, mock := newMock(t)
	store := NewStore(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(decrementQuery).WithArgs(5).WillReturnError(&mysql.MySQLError{Number: errDeadlock, Message: "Deadlock found"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec(decrementQuery).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	calls := 0
	err := store.InTx(context.Background(), func(r booking.Repositories) error {
		calls++
		_, err := r.Ledger.TryDecrement(context.Background(), 5)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InTx_DoesNotRetryOtherErrors(t *testing.T) {
	db, mock := newMock(t)
	store := NewStore(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(decrementQuery).WithArgs(5).WillReturnError(&mysql.MySQLError{Number: errDupEntry, Message: "Duplicate entry"})
	mock.ExpectRollback()

	calls := 0
	err := store.InTx(context.Background(), func(r booking.Repositories) error {
		calls++
		_, err := r.Ledger.TryDecrement(context.Background(), 5)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil))
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: errDupEntry}), ErrDuplicate)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: errCheckViolated}), booking.ErrCapacityViolation)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: errNoReferencedRow}), booking.ErrValidation)

	other := errors.New("other")
	assert.Equal(t, other, translate(other))
}
