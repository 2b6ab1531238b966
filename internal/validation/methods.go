// Package validation collects field-level input checks and reports them as
// one domain error.
package validation

import (
	"sort"
	"strings"
	"unicode/utf8"

	apperrors "fintrack/internal/errors"
)

// Validator defines validation methods
type Validator struct {
	Errors map[string]string
}

// New creates a new validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid checks if there are any validation errors
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error to the validator. The first error for a field wins.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Required checks that a string is not blank
func (v *Validator) Required(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, "must not be empty")
}

// MaxLength checks a string's length in characters
func (v *Validator) MaxLength(field, value string, max int) {
	v.Check(utf8.RuneCountInString(value) <= max, field, "is too long")
}

// Err returns nil when valid, otherwise sentinel wrapped with every field
// error in field order.
func (v *Validator) Err(sentinel *apperrors.DomainError) error {
	if v.Valid() {
		return nil
	}

	fields := make([]string, 0, len(v.Errors))
	for f := range v.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + " " + v.Errors[f]
	}
	return apperrors.Wrapf(sentinel, "%s", strings.Join(parts, "; "))
}
