// Package wire defines the JSON envelope shared by the identity API and its
// clients, and the business codes that carry domain failures across it.
package wire

import (
	"encoding/json"
	"errors"
	"net/http"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

// SuccessCode is the only code that denotes success.
const SuccessCode = 200

// Business failure codes.
const (
	CodeInvalidCredentials = 1001
	CodeAccountDisabled    = 1002
	CodeDuplicateUsername  = 1003
	CodeDuplicateEmail     = 1004
	CodeUserNotFound       = 1005
	CodeMissingToken       = 1006
	CodeMalformedToken     = 1007
	CodeTokenExpired       = 1008
	CodeValidation         = 1400
	CodeInternal           = 1500
)

// Envelope wraps every API response body.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Success bool   `json:"success"`
}

// OK builds a success envelope.
func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Code: SuccessCode, Message: "success", Data: data, Success: true}
}

// Fail builds a failure envelope with no data.
func Fail(code int, message string) Envelope[json.RawMessage] {
	return Envelope[json.RawMessage]{Code: code, Message: message, Data: json.RawMessage("null")}
}

type codeMapping struct {
	err    error
	code   int
	status int
}

// mappings is ordered; the first errors.Is match wins.
var mappings = []codeMapping{
	{domainauth.ErrInvalidCredentials, CodeInvalidCredentials, http.StatusOK},
	{domainauth.ErrAccountDisabled, CodeAccountDisabled, http.StatusOK},
	{domainauth.ErrDuplicateUsername, CodeDuplicateUsername, http.StatusOK},
	{domainauth.ErrDuplicateEmail, CodeDuplicateEmail, http.StatusOK},
	{domainauth.ErrUserNotFound, CodeUserNotFound, http.StatusNotFound},
	{domainauth.ErrMissingToken, CodeMissingToken, http.StatusUnauthorized},
	{domainauth.ErrMalformedToken, CodeMalformedToken, http.StatusUnauthorized},
	{domainauth.ErrTokenExpired, CodeTokenExpired, http.StatusUnauthorized},
}

// CodeFor returns the business code and HTTP status for a domain error.
// ok is false when err is not a known domain failure.
func CodeFor(err error) (code, status int, ok bool) {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.code, m.status, true
		}
	}
	return 0, 0, false
}

// ErrorFor returns the domain sentinel carried by a business code, or nil.
func ErrorFor(code int) error {
	for _, m := range mappings {
		if m.code == code {
			return m.err
		}
	}
	return nil
}
