// Package errors defines the domain error taxonomy shared by the ledger
// services and the HTTP boundary.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a DomainError for callers that map errors to responses.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindInvalidRequest        Kind = "invalid_request"
	KindConversionUnavailable Kind = "conversion_unavailable"
	KindInconsistent          Kind = "inconsistent"
	KindInternal              Kind = "internal"
)

// DomainError is a coded error. Two DomainErrors match with errors.Is when
// their codes are equal, so a wrapped copy still matches its sentinel.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of the sentinel carrying cause as its underlying error.
func Wrap(sentinel *DomainError, cause error) *DomainError {
	return &DomainError{
		Kind:    sentinel.Kind,
		Code:    sentinel.Code,
		Message: sentinel.Message,
		Err:     cause,
	}
}

// Wrapf is Wrap with a formatted detail message as the cause.
func Wrapf(sentinel *DomainError, format string, args ...interface{}) *DomainError {
	return Wrap(sentinel, fmt.Errorf(format, args...))
}

// KindOf reports the Kind of the first DomainError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries a DomainError of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
