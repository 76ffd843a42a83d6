package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	apperrors "github.com/smartbin/portal/internal/errors"
)

func validRegister() domainauth.RegisterRequest {
	return domainauth.RegisterRequest{
		Username:        "new_user",
		Email:           "new@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestRegister_Valid(t *testing.T) {
	errs, err := Register(validRegister(), RegisterOptions{})
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestRegister_FieldRules(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*domainauth.RegisterRequest)
		field string
	}{
		{"missing username", func(r *domainauth.RegisterRequest) { r.Username = "" }, "username"},
		{"short username", func(r *domainauth.RegisterRequest) { r.Username = "ab" }, "username"},
		{"bad username chars", func(r *domainauth.RegisterRequest) { r.Username = "bad-name" }, "username"},
		{"bad email", func(r *domainauth.RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *domainauth.RegisterRequest) { r.Password, r.ConfirmPassword = "abc", "abc" }, "password"},
		{"mismatched confirm", func(r *domainauth.RegisterRequest) { r.ConfirmPassword = "other" }, "confirmPassword"},
		{"bad phone", func(r *domainauth.RegisterRequest) { r.Phone = "12345" }, "phone"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegister()
			tc.mut(&req)
			errs, err := Register(req, RegisterOptions{})
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tc.field, apperrors.GetField(err))
			assert.Contains(t, errs, tc.field)
		})
	}
}

func TestRegister_ValidPhone(t *testing.T) {
	req := validRegister()
	req.Phone = "13800138000"
	_, err := Register(req, RegisterOptions{})
	require.NoError(t, err)
}

func TestRegister_Terms(t *testing.T) {
	_, err := Register(validRegister(), RegisterOptions{RequireTerms: true})
	require.Error(t, err)
	assert.Equal(t, "terms", apperrors.GetField(err))

	_, err = Register(validRegister(), RegisterOptions{RequireTerms: true, TermsAccepted: true})
	require.NoError(t, err)
}

func TestRegister_FirstFieldWins(t *testing.T) {
	errs, err := Register(domainauth.RegisterRequest{}, RegisterOptions{})
	require.Error(t, err)
	assert.Equal(t, "username", apperrors.GetField(err))
	assert.Len(t, errs, 4)
}

func TestLogin(t *testing.T) {
	require.NoError(t, Login(domainauth.LoginRequest{Username: "admin", Password: "wrong"}))

	err := Login(domainauth.LoginRequest{Username: "admin"})
	require.Error(t, err)
	assert.Equal(t, "password", apperrors.GetField(err))
}

func TestChangeAndResetPassword(t *testing.T) {
	err := ChangePassword(domainauth.ChangePasswordRequest{CurrentPassword: "a", NewPassword: "secret1", ConfirmPassword: "secret2"})
	assert.Equal(t, "confirmPassword", apperrors.GetField(err))

	require.NoError(t, ResetPassword(domainauth.ResetPasswordRequest{Token: "t", NewPassword: "secret1", ConfirmPassword: "secret1"}))
	assert.Equal(t, "token", apperrors.GetField(ResetPassword(domainauth.ResetPasswordRequest{})))
}

func TestStrength(t *testing.T) {
	tests := []struct {
		password string
		score    int
		level    StrengthLevel
	}{
		{"", 0, StrengthWeak},
		{"abc", 1, StrengthWeak},
		{"abcdefgh", 2, StrengthFair},
		{"abcdefG1", 4, StrengthStrong},
		{"abcdeG1!", 5, StrengthVeryStrong},
		{"ABC123", 2, StrengthFair},
		{"Abc123", 3, StrengthGood},
	}
	for _, tc := range tests {
		score, level := Strength(tc.password)
		assert.Equal(t, tc.score, score, tc.password)
		assert.Equal(t, tc.level, level, tc.password)
	}
}
