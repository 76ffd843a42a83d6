package mockidentity

import (
	"context"
	"time"
)

// Latency holds the simulated round-trip time of each operation.
type Latency struct {
	Login        time.Duration
	Register     time.Duration
	Profile      time.Duration
	Refresh      time.Duration
	Password     time.Duration
	SendCode     time.Duration
	VerifyEmail  time.Duration
	Availability time.Duration
}

// DefaultLatency mirrors a slow remote API so the UI loading states are visible.
func DefaultLatency() Latency {
	return Latency{
		Login:        800 * time.Millisecond,
		Register:     1200 * time.Millisecond,
		Profile:      500 * time.Millisecond,
		Refresh:      300 * time.Millisecond,
		Password:     1000 * time.Millisecond,
		SendCode:     800 * time.Millisecond,
		VerifyEmail:  500 * time.Millisecond,
		Availability: 300 * time.Millisecond,
	}
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
