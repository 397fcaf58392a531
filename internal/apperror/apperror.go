// Package apperror defines the error taxonomy shared by services and handlers.
//
// Every failure surfaced to a caller is an *Error with a Kind. Callers branch with
// errors.Is against the sentinel values (ErrNotFound, ErrForbidden, ...), which match
// on Kind regardless of message, and read Fields or Storage for details.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindAuth            Kind = "auth"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindStorage         Kind = "storage"
)

// StorageKind classifies backing-store failures so callers need not parse driver text.
type StorageKind string

const (
	StorageUnavailable     StorageKind = "unavailable"
	StorageAccessDenied    StorageKind = "access_denied"
	StorageMissingDatabase StorageKind = "missing_database"
	StorageMissingTable    StorageKind = "missing_table"
	StorageDuplicate       StorageKind = "duplicate"
	StorageQueryFailed     StorageKind = "query_failed"
)

// FieldError is one violated input rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Storage StorageKind
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Message)
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(msgs, "; "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind. A target with a Storage kind set
// additionally requires the same StorageKind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Storage == "" || t.Storage == e.Storage
}

var (
	ErrValidation      = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrAuth            = &Error{Kind: KindAuth, Message: "invalid credentials"}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "not logged in"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "already exists"}
	ErrStorage         = &Error{Kind: KindStorage, Message: "storage failure"}
)

func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "not logged in"}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Storage(kind StorageKind, err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage failure (" + string(kind) + ")", Storage: kind, Err: err}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// FieldsOf returns the field violations carried by err, if any.
func FieldsOf(err error) []FieldError {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}
