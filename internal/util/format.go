package util //nolint:revive // package name util hosts shared formatting helpers used by the CLI

import "time"

// FormatElapsed formats a duration for terminal output.
// Returns "-" for zero or negative durations and truncates to milliseconds above that.
func FormatElapsed(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Millisecond:
		return d.String()
	default:
		return d.Truncate(time.Millisecond).String()
	}
}

// FormatTTL renders a remaining lifetime, with "no expiry" for keys without one.
func FormatTTL(d time.Duration) string {
	switch {
	case d == -1:
		return "no expiry"
	case d < 0:
		return "expired"
	default:
		return d.Truncate(time.Second).String()
	}
}
