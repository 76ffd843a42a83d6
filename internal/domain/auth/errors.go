package auth

import "errors"

// Domain failures shared by every identity backend. Backends wrap these with
// context; callers classify with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingToken       = errors.New("no access token")
	ErrMalformedToken     = errors.New("malformed token")
	ErrTokenExpired       = errors.New("token expired")
	ErrRecordNotFound     = errors.New("record not found")
	ErrNoSession          = errors.New("no session")
	ErrNoSessionID        = errors.New("no session id in context")
)
