// Package validation holds the field rules applied to account forms before
// they reach the auth service.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/smartbin/portal/internal/errors"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// Required validates that a field is not empty.
func Required(fieldName string) Validator {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return fieldName + " is required."
		}
		return ""
	}
}

// MinLength validates that a non-empty field has at least minLen characters.
// Uses rune count for proper Unicode support.
func MinLength(fieldName string, minLen int) Validator {
	return func(v string) string {
		if v == "" {
			return ""
		}
		if utf8.RuneCountInString(v) < minLen {
			return fmt.Sprintf("%s must be at least %d characters.", fieldName, minLen)
		}
		return ""
	}
}

// Pattern validates that a field matches the provided regular expression.
// Empty values pass; combine with Required when the field is mandatory.
func Pattern(message string, re *regexp.Regexp) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if !re.MatchString(v) {
			return message
		}
		return ""
	}
}

// Equals validates that the value matches other exactly.
func Equals(message, other string) Validator {
	return func(v string) string {
		if v != other {
			return message
		}
		return ""
	}
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
	order  []string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if msg := v(value); msg != "" {
			fv.add(field, msg)
			break // Stop at first error per field
		}
	}
	return fv
}

// Check records message for field when ok is false.
func (fv *FieldValidator) Check(field string, ok bool, message string) *FieldValidator {
	if !ok {
		fv.add(field, message)
	}
	return fv
}

func (fv *FieldValidator) add(field, msg string) {
	if _, seen := fv.errors[field]; seen {
		return
	}
	fv.errors[field] = msg
	fv.order = append(fv.order, field)
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}

// Err returns the first failing field as a validation AppError, or nil.
func (fv *FieldValidator) Err() error {
	if len(fv.order) == 0 {
		return nil
	}
	field := fv.order[0]
	return apperrors.ValidationField(field, fv.errors[field])
}
