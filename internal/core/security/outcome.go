package security

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrorKind classifies why a value was rejected.
type ErrorKind string

const (
	KindEmptyInput         ErrorKind = "empty_input"
	KindNotAllowListed     ErrorKind = "not_allow_listed"
	KindDangerousCharacter ErrorKind = "dangerous_character"
	KindMalformedFormat    ErrorKind = "malformed_format"
	KindOutOfRange         ErrorKind = "out_of_range"
	KindNotAnInteger       ErrorKind = "not_an_integer"
	KindNotFinite          ErrorKind = "not_finite"
	KindNotNumeric         ErrorKind = "not_numeric"
)

// ValidationError is the error form of an invalid Outcome.
type ValidationError struct {
	Kind   ErrorKind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Outcome is either a valid value or a rejection reason, never both.
// The zero Outcome is invalid with an empty reason.
type Outcome[T any] struct {
	value  T
	kind   ErrorKind
	reason string
	ok     bool
}

// Valid wraps an accepted value.
func Valid[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, ok: true}
}

// Invalid builds a rejection.
func Invalid[T any](kind ErrorKind, reason string) Outcome[T] {
	return Outcome[T]{kind: kind, reason: reason}
}

// OK reports whether the value was accepted.
func (o Outcome[T]) OK() bool { return o.ok }

// Value returns the accepted value, or the zero value of T when rejected.
func (o Outcome[T]) Value() T { return o.value }

// Reason returns the rejection reason, or "" when accepted.
func (o Outcome[T]) Reason() string { return o.reason }

// Kind returns the rejection kind, or "" when accepted.
func (o Outcome[T]) Kind() ErrorKind { return o.kind }

// Err converts a rejection into a *ValidationError tagged with field.
// It returns nil for accepted values.
func (o Outcome[T]) Err(field string) error {
	if o.ok {
		return nil
	}
	return &ValidationError{Kind: o.kind, Field: field, Reason: o.reason}
}
