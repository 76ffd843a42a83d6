package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrEventKindRequired is returned when an account event has no kind.
	ErrEventKindRequired = errors.New("event kind is required")
)
