package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindDuplicateKey ErrorKind = "duplicate_key"
	KindPersistence  ErrorKind = "persistence"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
)

// Error is the structured failure surfaced to callers: a kind plus a message.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

var ErrNotFound = &Error{Kind: KindNotFound, Msg: "not found"}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func DuplicateKey(msg string, err error) error {
	return &Error{Kind: KindDuplicateKey, Msg: msg, Err: err}
}

func Persistence(err error, msg string) error {
	return &Error{Kind: KindPersistence, Msg: msg, Err: err}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// KindOf reports the kind of the first *Error in err's chain.
// Errors that carry no kind are treated as persistence failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindPersistence
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// AsPersistence keeps typed errors as they are and wraps anything else as a persistence failure.
func AsPersistence(err error, msg string) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return Persistence(err, msg)
}
