package notify

import (
	"context"
	"time"
)

// Account event kinds emitted by identity backends.
const (
	EventRegistered             = "registered"
	EventPasswordResetRequested = "password_reset_requested"
	EventPasswordChanged        = "password_changed"
	EventVerificationCodeSent   = "verification_code_sent"
)

// AccountEvent captures the canonical data we emit for account lifecycle notifications.
type AccountEvent struct {
	Kind       string
	UserID     string
	Username   string
	Contact    string
	Channel    string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of consuming account notifications.
type Sink interface {
	SendAccountEvent(ctx context.Context, event AccountEvent) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, event AccountEvent) error

// SendAccountEvent implements the Sink interface.
func (f SinkFunc) SendAccountEvent(ctx context.Context, event AccountEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}
