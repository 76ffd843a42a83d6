package cryptoutil

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestAESGCMSealer_RoundTrip(t *testing.T) {
	s, err := NewAESGCMSealer(testKey())
	require.NoError(t, err)

	sealed, err := s.Seal([]byte(`{"token":"abc"}`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "v1:"))
	assert.NotContains(t, sealed, "abc")

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"token":"abc"}`, string(opened))
}

func TestAESGCMSealer_AcceptsPlainRecords(t *testing.T) {
	s, err := NewAESGCMSealer(testKey())
	require.NoError(t, err)

	plain, err := PlainSealer{}.Seal([]byte("legacy"))
	require.NoError(t, err)
	opened, err := s.Open(plain)
	require.NoError(t, err)
	assert.Equal(t, "legacy", string(opened))
}

func TestAESGCMSealer_InvalidKey(t *testing.T) {
	_, err := NewAESGCMSealer([]byte("short"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be 32 bytes")
}

func TestAESGCMSealer_InvalidInput(t *testing.T) {
	s, err := NewAESGCMSealer(testKey())
	require.NoError(t, err)

	_, err = s.Open("v2:somedata")
	require.ErrorIs(t, err, ErrUnsealed)

	_, err = s.Open("v1:!!!invalid!!!")
	require.Error(t, err)

	_, err = s.Open("v1:" + base64.StdEncoding.EncodeToString([]byte("x")))
	require.Error(t, err)

	other, err := NewAESGCMSealer(make([]byte, 32))
	require.NoError(t, err)
	sealed, err := other.Seal([]byte("x"))
	require.NoError(t, err)
	_, err = s.Open(sealed)
	require.Error(t, err, "wrong key must not open")
}

func TestKeyFromString(t *testing.T) {
	hexKey := strings.Repeat("ab", 32)
	k, err := KeyFromString(hexKey)
	require.NoError(t, err)
	assert.Len(t, k, 32)
	assert.Equal(t, byte(0xab), k[0])

	k, err = KeyFromString("passphrase")
	require.NoError(t, err)
	assert.Len(t, k, 32)

	_, err = KeyFromString("")
	require.Error(t, err)
}

func TestSealJSON_OpenJSON(t *testing.T) {
	type rec struct {
		Token string `json:"token"`
	}
	s, err := NewAESGCMSealer(testKey())
	require.NoError(t, err)

	data, err := SealJSON(s, rec{Token: "t"})
	require.NoError(t, err)
	var out rec
	require.NoError(t, OpenJSON(s, data, &out))
	assert.Equal(t, "t", out.Token)

	plain, err := SealJSON(nil, rec{Token: "p"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"p"}`, string(plain))
	require.NoError(t, OpenJSON(s, plain, &out), "plain json is readable after a key is configured")
	assert.Equal(t, "p", out.Token)
}
