// Package repository implements the booking engine's persistence on MySQL
// through database/sql.  Every repository works on a DBTX so the same code
// runs against the pool or inside a transaction opened by Store.InTx.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/table-reservation/internal/booking"
)

// ErrDuplicate is returned when an insert or update hits a unique key,
// e.g. a second location with the same name.  Handlers translate this into
// an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate entry")

// MySQL server error numbers the repositories react to.
const (
	errDupEntry        = 1062
	errNoReferencedRow = 1452
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
	errCheckViolated   = 3819
)

func mysqlErrno(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isRetryable reports whether a transaction failed because InnoDB chose it
// as a deadlock victim or gave up waiting for a row lock.
func isRetryable(err error) bool {
	n := mysqlErrno(err)
	return n == errDeadlock || n == errLockWaitTimeout
}

// translate maps driver errors onto the sentinels callers check for.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return booking.ErrNotFound
	case mysqlErrno(err) == errDupEntry:
		return ErrDuplicate
	case mysqlErrno(err) == errCheckViolated:
		return booking.ErrCapacityViolation
	case mysqlErrno(err) == errNoReferencedRow:
		return &booking.ValidationError{Message: "referenced record does not exist"}
	}
	return err
}
