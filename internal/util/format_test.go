package util //nolint:revive // package name matches the helpers under test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "-", FormatElapsed(0))
	assert.Equal(t, "-", FormatElapsed(-time.Second))
	assert.Equal(t, "500µs", FormatElapsed(500*time.Microsecond))
	assert.Equal(t, "1.234s", FormatElapsed(1234567*time.Microsecond))
}

func TestFormatTTL(t *testing.T) {
	assert.Equal(t, "no expiry", FormatTTL(-1))
	assert.Equal(t, "expired", FormatTTL(-2))
	assert.Equal(t, "1m30s", FormatTTL(90*time.Second+400*time.Millisecond))
}
