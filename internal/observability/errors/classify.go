// Package errors maps failures onto low-cardinality class names for metric tags.
package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	apperrors "github.com/smartbin/portal/internal/errors"
)

var sentinels = []struct {
	err   error
	class string
}{
	{domainauth.ErrInvalidCredentials, "invalid_credentials"},
	{domainauth.ErrAccountDisabled, "account_disabled"},
	{domainauth.ErrDuplicateUsername, "duplicate_username"},
	{domainauth.ErrDuplicateEmail, "duplicate_email"},
	{domainauth.ErrUserNotFound, "user_not_found"},
	{domainauth.ErrMissingToken, "missing_token"},
	{domainauth.ErrMalformedToken, "malformed_token"},
	{domainauth.ErrTokenExpired, "token_expired"},
	{domainauth.ErrRecordNotFound, "record_not_found"},
	{domainauth.ErrNoSession, "no_session"},
	{domainauth.ErrNoSessionID, "no_session_id"},
	{context.DeadlineExceeded, "timeout"},
	{context.Canceled, "canceled"},
}

// Classify returns a stable class name for err, or "" for nil.
// Known identity failures and AppError codes win; anything else is named
// after the innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	for _, s := range sentinels {
		if goerrors.Is(err, s.err) {
			return s.class
		}
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}
	return typeName(err)
}

func typeName(err error) string {
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	if name == "" {
		return "unknown"
	}
	return name
}
