package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindBusiness is an HTTP 2xx response whose envelope code is not 200.
	KindBusiness Kind = iota + 1
	KindAuthentication
	KindPermission
	KindNotFound
	KindServer
	// KindHTTP is any other non-2xx status.
	KindHTTP
	// KindNetwork means no response was received.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindBusiness:
		return "business"
	case KindAuthentication:
		return "authentication"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is; every *Error matches exactly one of them.
var (
	ErrBusiness             = errors.New("business error")
	ErrAuthenticationFailed = errors.New("authentication failed, please log in again")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrNotFound             = errors.New("resource not found")
	ErrServer               = errors.New("server error")
	ErrHTTP                 = errors.New("http error")
	ErrNetwork              = errors.New("network error, please check your connection")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindBusiness:
		return ErrBusiness
	case KindAuthentication:
		return ErrAuthenticationFailed
	case KindPermission:
		return ErrPermissionDenied
	case KindNotFound:
		return ErrNotFound
	case KindServer:
		return ErrServer
	case KindHTTP:
		return ErrHTTP
	case KindNetwork:
		return ErrNetwork
	default:
		return nil
	}
}

// Error is returned by every failed call. Code and Message come from the
// response envelope when one was present.
type Error struct {
	Kind    Kind
	Status  int
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	base := sentinelFor(e.Kind)
	switch {
	case e.Kind == KindBusiness:
		return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
	case e.Kind == KindNetwork && e.Err != nil:
		return fmt.Sprintf("%v: %v", base, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%v (status %d): %s", base, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%v (status %d)", base, e.Status)
	default:
		return fmt.Sprint(base)
	}
}

// Unwrap exposes the transport cause (e.g. context.Canceled).
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error kind.
func (e *Error) Is(target error) bool {
	s := sentinelFor(e.Kind)
	return s != nil && target == s
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
