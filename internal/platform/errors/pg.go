package errors

// Postgres errors are split into two families: the server rejected the row's
// values (isolate that row and keep going) or the database is unusable

import (
	"context"
	stderrs "errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ExtractPgError finds a *pgconn.PgError in err's chain
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	ok := stderrs.As(err, &pgErr)
	return pgErr, ok
}

// SQLState is the SQLSTATE carried by err, or ""
func SQLState(err error) string {
	if pgErr, ok := ExtractPgError(err); ok {
		return pgErr.Code
	}
	return ""
}

func IsDuplicateKey(err error) bool     { return SQLState(err) == pgerrcode.UniqueViolation }
func IsNotNullViolation(err error) bool { return SQLState(err) == pgerrcode.NotNullViolation }
func IsStringTooLong(err error) bool    { return SQLState(err) == pgerrcode.StringDataRightTruncationDataException }

// IsDataException is SQLSTATE class 22: too long, out of range, bad encoding or text
func IsDataException(err error) bool { return pgerrcode.IsDataException(SQLState(err)) }

// IsIntegrityViolation is SQLSTATE class 23: not null, unique, check or foreign key
func IsIntegrityViolation(err error) bool {
	return pgerrcode.IsIntegrityConstraintViolation(SQLState(err))
}

// IsDataValidity reports a rejection of the values themselves, which only
// condemns the offending row
func IsDataValidity(err error) bool {
	if err == nil {
		return false
	}
	return IsCode(err, ErrorCodeDataValidity) || IsDataException(err) || IsIntegrityViolation(err)
}

// connectivityClass covers connection exceptions, exhausted resources and
// operator intervention (shutdown, cancel)
func connectivityClass(code string) bool {
	return pgerrcode.IsConnectionException(code) ||
		pgerrcode.IsInsufficientResources(code) ||
		pgerrcode.IsOperatorIntervention(code)
}

// IsConnectivity reports that the database, or the pipe to it, went away
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	if IsCode(err, ErrorCodeConnectivity) || connectivityClass(SQLState(err)) {
		return true
	}
	var netErr net.Error
	var connErr *pgconn.ConnectError
	switch {
	case stderrs.As(err, &netErr), stderrs.As(err, &connErr):
		return true
	case stderrs.Is(err, io.ErrUnexpectedEOF), stderrs.Is(err, net.ErrClosed):
		return true
	}
	return pgconn.SafeToRetry(err)
}

// transient SQLSTATEs a retry can clear
func transient(code string) bool {
	switch code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected,
		pgerrcode.LockNotAvailable, pgerrcode.CannotConnectNow:
		return true
	}
	return false
}

// DBErrorCode maps a Postgres error to an ErrorCode; ok is false for anything else
func DBErrorCode(err error) (code ErrorCode, ok bool) {
	state := SQLState(err)
	if state == "" {
		return ErrorCodeUnknown, false
	}
	switch {
	case state == pgerrcode.CannotConnectNow, state == pgerrcode.ReadOnlySQLTransaction:
		return ErrorCodeUnavailable, true
	case transient(state):
		return ErrorCodeDB, true
	case pgerrcode.IsDataException(state), pgerrcode.IsIntegrityConstraintViolation(state):
		return ErrorCodeDataValidity, true
	case connectivityClass(state):
		return ErrorCodeConnectivity, true
	}
	return ErrorCodeDB, true
}

// FromPostgres tags err with the mapped code and the offending column.
// Non-Postgres errors become connectivity when they look like a dropped
// connection, db otherwise. nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := DBErrorCode(err); ok {
		return AttachFieldFromPg(Wrap(err, code, msg))
	}
	if IsConnectivity(err) {
		return Wrap(err, ErrorCodeConnectivity, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}

func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// AttachFieldFromPg labels err with the column the server blamed, if any
func AttachFieldFromPg(err error) error {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return err
	}
	if col := strings.TrimSpace(pgErr.ColumnName); col != "" {
		return WithField(err, col)
	}
	return err
}

// IsRetryable reports a transient database condition. Cancellation and
// data-validity rejections never are
func IsRetryable(err error) bool {
	switch {
	case err == nil, stderrs.Is(err, context.Canceled), stderrs.Is(err, context.DeadlineExceeded):
		return false
	}
	if state := SQLState(err); state != "" {
		return transient(state)
	}
	msg := strings.ToLower(Root(err).Error())
	for _, s := range []string{
		"commit unexpectedly resulted in rollback",
		"deadlock detected",
		"could not serialize access",
		"terminating connection due to administrator command",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
