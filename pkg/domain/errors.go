package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so callers can react without parsing messages.
type ErrorKind string

// Domain error kinds.
const (
	// ErrorOverfill reports a load or capacity operation exceeding a payload, count or weight limit.
	ErrorOverfill ErrorKind = "overfill"
	// ErrorAlreadyAssigned reports a container that already has an owning ship.
	ErrorAlreadyAssigned ErrorKind = "already_assigned"
	// ErrorNotFound reports a serial number or ship that is not where the caller expected it.
	ErrorNotFound ErrorKind = "not_found"
	// ErrorProductMismatch reports refrigerated cargo declared for a different product.
	ErrorProductMismatch ErrorKind = "product_mismatch"
	// ErrorTemperatureViolation reports a temperature below the stored product's minimum.
	ErrorTemperatureViolation ErrorKind = "temperature_violation"
	// ErrorInvalidConfiguration reports rejected construction parameters or cargo quantities.
	ErrorInvalidConfiguration ErrorKind = "invalid_configuration"
)

// Sentinels matching any *Error of the same kind through errors.Is.
var (
	ErrOverfill             = &Error{Kind: ErrorOverfill}
	ErrAlreadyAssigned      = &Error{Kind: ErrorAlreadyAssigned}
	ErrNotFound             = &Error{Kind: ErrorNotFound}
	ErrProductMismatch      = &Error{Kind: ErrorProductMismatch}
	ErrTemperatureViolation = &Error{Kind: ErrorTemperatureViolation}
	ErrInvalidConfiguration = &Error{Kind: ErrorInvalidConfiguration}
)

// Error is the single error type returned by domain operations.
type Error struct {
	Kind    ErrorKind
	Serial  string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches sentinels by kind. A non-sentinel target only matches itself.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Serial == "" {
		return t.Kind == e.Kind
	}
	return t == e
}

// KindOf returns the domain error kind carried by err, or "" when err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Errorf builds a domain error of kind for serial. Adapters use it to report
// lookups and checks that happen outside this package.
func Errorf(kind ErrorKind, serial, format string, args ...any) *Error {
	return newError(kind, serial, format, args...)
}

func newError(kind ErrorKind, serial, format string, args ...any) *Error {
	return &Error{Kind: kind, Serial: serial, Message: fmt.Sprintf(format, args...)}
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return fmt.Sprintf("fleet blocked by rules: %d violation(s)", len(e.Result.Violations))
}
