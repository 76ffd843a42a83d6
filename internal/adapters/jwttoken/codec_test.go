package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbin/portal/internal/adapters/pseudotoken"
	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestNew_RejectsShortSecret(t *testing.T) {
	_, err := New(Config{Secret: []byte("short")})
	require.Error(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	c, err := New(Config{Secret: testSecret, Issuer: "smartbin"})
	require.NoError(t, err)

	tok, err := c.Issue("refresh-2", time.Hour)
	require.NoError(t, err)

	claims, err := c.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", claims.UserID)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), claims.Exp, 1)
}

func TestCodec_Decode_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer, err := New(Config{Secret: testSecret, Now: func() time.Time { return past }})
	require.NoError(t, err)
	tok, err := issuer.Issue("1", time.Hour)
	require.NoError(t, err)

	c, err := New(Config{Secret: testSecret})
	require.NoError(t, err)
	_, err = c.Decode(tok)
	require.ErrorIs(t, err, domainauth.ErrTokenExpired)
}

func TestCodec_Decode_WrongSecret(t *testing.T) {
	a, err := New(Config{Secret: testSecret})
	require.NoError(t, err)
	b, err := New(Config{Secret: []byte("ffffffffffffffffffffffffffffffff")})
	require.NoError(t, err)

	tok, err := a.Issue("1", time.Hour)
	require.NoError(t, err)
	_, err = b.Decode(tok)
	require.ErrorIs(t, err, domainauth.ErrMalformedToken)
}

func TestCodec_Decode_RejectsPseudoToken(t *testing.T) {
	pseudo, err := pseudotoken.New().Issue("1", time.Hour)
	require.NoError(t, err)

	c, err := New(Config{Secret: testSecret})
	require.NoError(t, err)
	_, err = c.Decode(pseudo)
	require.ErrorIs(t, err, domainauth.ErrMalformedToken)
}

func TestCodec_Decode_Garbage(t *testing.T) {
	c, err := New(Config{Secret: testSecret})
	require.NoError(t, err)
	_, err = c.Decode("not-a-token")
	require.ErrorIs(t, err, domainauth.ErrMalformedToken)
}
