package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAuthorization     = errors.New("authorization error")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrConflict          = errors.New("conflict")
	ErrPersistence       = errors.New("persistence error")
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// Error is the error type returned by the service layer. Key names a message
// in the i18n catalogue and Args fill its placeholders.
type Error struct {
	Kind       error
	Key        string
	Args       []any
	Violations []Violation
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Key != "" {
		b.WriteString(": ")
		b.WriteString(e.Key)
	}
	if len(e.Args) > 0 {
		fmt.Fprintf(&b, " %v", e.Args)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, key string, args ...any) *Error {
	return &Error{Kind: kind, Key: key, Args: args}
}

func ValidationError(key string, violations ...Violation) *Error {
	e := newError(ErrValidation, key)
	e.Violations = violations
	return e
}

func NotFound(key string, args ...any) *Error {
	return newError(ErrItemNotFound, key, args...)
}

// InsufficientStock names the product and how many units are missing.
func InsufficientStock(productID uint64, name string, shortfall int) *Error {
	return newError(ErrInsufficientStock, "order.insufficient_stock", name, productID, shortfall)
}

func Forbidden(key string, args ...any) *Error {
	return newError(ErrAuthorization, key, args...)
}

func Unauthenticated(key string) *Error {
	return newError(ErrUnauthenticated, key)
}

func Conflict(key string, args ...any) *Error {
	return newError(ErrConflict, key, args...)
}

func Persistence(key string, err error) *Error {
	e := newError(ErrPersistence, key)
	e.Err = err
	return e
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
