package wire

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

func TestOK_JSONShape(t *testing.T) {
	b, err := json.Marshal(OK(true))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":200,"message":"success","data":true,"success":true}`, string(b))
}

func TestFail_JSONShape(t *testing.T) {
	b, err := json.Marshal(Fail(CodeInvalidCredentials, "invalid username or password"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":1001,"message":"invalid username or password","data":null,"success":false}`, string(b))
}

func TestCodeFor_WrappedErrors(t *testing.T) {
	code, status, ok := CodeFor(fmt.Errorf("create: %w", domainauth.ErrDuplicateEmail))
	require.True(t, ok)
	assert.Equal(t, CodeDuplicateEmail, code)
	assert.Equal(t, http.StatusOK, status)

	code, status, ok = CodeFor(domainauth.ErrMissingToken)
	require.True(t, ok)
	assert.Equal(t, CodeMissingToken, code)
	assert.Equal(t, http.StatusUnauthorized, status)

	_, _, ok = CodeFor(fmt.Errorf("boom"))
	assert.False(t, ok)
}

func TestErrorFor_RoundTrip(t *testing.T) {
	for _, m := range mappings {
		code, _, ok := CodeFor(m.err)
		require.True(t, ok)
		assert.ErrorIs(t, ErrorFor(code), m.err)
	}
	assert.Nil(t, ErrorFor(9999))
}
