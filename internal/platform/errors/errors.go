// Package errors is the importer's error type: a code the pipeline branches on,
// an optional offending column and operation, and the wrapped cause.
// Import it as perr
package errors

import (
	stderrs "errors"
	"fmt"
)

// ErrorCode classifies failures the importer reacts to differently.
// The names are written to the import ledger, so never renumber
type ErrorCode uint16

const (
	ErrorCodeUnknown         ErrorCode = iota
	ErrorCodeInvalidArgument           // bad flag, env value or table name
	ErrorCodeNotFound                  // missing file or row
	ErrorCodeMalformed                 // record is not a JSON object
	ErrorCodeDataValidity              // destination schema rejected the values
	ErrorCodeConnectivity              // database or decompressor went away
	ErrorCodePartialArchive            // archive stream ended early or the decompressor failed
	ErrorCodeUnavailable               // transient or unconfigured; a retry may succeed
	ErrorCodeDB                        // any other database error
)

var codeNames = map[ErrorCode]string{
	ErrorCodeUnknown:         "unknown",
	ErrorCodeInvalidArgument: "invalid_argument",
	ErrorCodeNotFound:        "not_found",
	ErrorCodeMalformed:       "malformed",
	ErrorCodeDataValidity:    "data_validity",
	ErrorCodeConnectivity:    "connectivity",
	ErrorCodePartialArchive:  "partial_archive",
	ErrorCodeUnavailable:     "unavailable",
	ErrorCodeDB:              "db",
}

func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", uint16(c))
}

// ErrNotFound is returned by single-row lookups that match nothing
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error carries a code plus optional column (field) and operation (op) labels
type Error struct {
	code  ErrorCode
	msg   string
	field string
	op    string
	cause error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.cause == nil:
		return e.msg
	default:
		return e.msg + ": " + e.cause.Error()
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Code is the classification
func (e *Error) Code() ErrorCode { return e.code }

// Field is the offending column, if the server named one
func (e *Error) Field() string { return e.field }

// Op is the operation label set by WithOp
func (e *Error) Op() string { return e.op }

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf is the code of the outermost *Error in err, or Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether CodeOf(err) is code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// Root follows Unwrap to the innermost cause
func Root(err error) error {
	for {
		next := stderrs.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// relabel copies the outermost *Error in err and applies fn to the copy.
// Foreign errors are returned unchanged
func relabel(err error, fn func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	fn(&c)
	return &c
}

// WithField labels err with the offending column
func WithField(err error, field string) error {
	return relabel(err, func(e *Error) { e.field = field })
}

// WithOp labels err with the operation that failed
func WithOp(err error, op string) error {
	return relabel(err, func(e *Error) { e.op = op })
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

// Wrap attaches code and msg to cause
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, cause: cause}
}

func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return Wrap(cause, code, fmt.Sprintf(format, a...))
}

func InvalidArgf(format string, a ...any) error   { return Newf(ErrorCodeInvalidArgument, format, a...) }
func NotFoundf(format string, a ...any) error     { return Newf(ErrorCodeNotFound, format, a...) }
func Malformedf(format string, a ...any) error    { return Newf(ErrorCodeMalformed, format, a...) }
func Connectivityf(format string, a ...any) error { return Newf(ErrorCodeConnectivity, format, a...) }
