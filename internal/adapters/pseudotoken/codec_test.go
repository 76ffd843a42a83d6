package pseudotoken

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

func TestCodec_RoundTrip(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := New(WithClock(func() time.Time { return fixed }))

	tok, err := c.Issue("42", time.Hour)
	require.NoError(t, err)

	claims, err := c.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, fixed.Add(time.Hour).Unix(), claims.Exp)
}

func TestCodec_RoundTripWallClock(t *testing.T) {
	c := New()
	before := time.Now()
	tok, err := c.Issue("7", time.Hour)
	require.NoError(t, err)

	claims, err := c.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	assert.InDelta(t, before.Add(time.Hour).Unix(), claims.Exp, 1)
}

func TestCodec_Shape(t *testing.T) {
	c := New()
	tok, err := c.Issue("1", time.Hour)
	require.NoError(t, err)

	header := base64.StdEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	sig := base64.StdEncoding.EncodeToString([]byte("mock-signature-1"))
	assert.Equal(t, header, strings.Split(tok, ".")[0])
	assert.Equal(t, sig, strings.Split(tok, ".")[2])
}

func TestCodec_Decode_Malformed(t *testing.T) {
	c := New()
	good := base64.StdEncoding.EncodeToString([]byte(`{"userId":"1","exp":1}`))
	noUser := base64.StdEncoding.EncodeToString([]byte(`{"exp":1}`))
	notJSON := base64.StdEncoding.EncodeToString([]byte(`nope`))

	cases := map[string]string{
		"empty":           "",
		"one segment":     good,
		"two segments":    "h." + good,
		"four segments":   "h." + good + ".s.x",
		"bad base64":      "h.%%%.s",
		"payload no json": "h." + notJSON + ".s",
		"missing userId":  "h." + noUser + ".s",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(tok)
			require.ErrorIs(t, err, domainauth.ErrMalformedToken)
		})
	}
}

func TestCodec_Decode_IgnoresExpiry(t *testing.T) {
	past := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	tok, err := New(WithClock(func() time.Time { return past })).Issue("1", time.Second)
	require.NoError(t, err)

	claims, err := New().Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.UserID)
}

func TestCodec_Issue_EmptySubject(t *testing.T) {
	_, err := New().Issue("", time.Hour)
	require.ErrorIs(t, err, domainauth.ErrMalformedToken)
}
