package validation

import (
	"regexp"
	"unicode"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^1[3-9]\d{9}$`)
)

// Minimum lengths for account fields.
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// Username returns the username rules.
func Username() []Validator {
	return []Validator{
		Required("Username"),
		MinLength("Username", MinUsernameLength),
		Pattern("Username may contain only letters, digits and underscores.", usernamePattern),
	}
}

// Email returns the email rules.
func Email() []Validator {
	return []Validator{
		Required("Email"),
		Pattern("Enter a valid email address.", emailPattern),
	}
}

// RegisterOptions toggles rules that depend on the calling surface.
type RegisterOptions struct {
	RequireTerms  bool
	TermsAccepted bool
}

// Register validates a registration form. The returned error, if any, is a
// validation AppError naming the first failing field; the map holds every
// failure keyed by field.
func Register(req domainauth.RegisterRequest, opts RegisterOptions) (map[string]string, error) {
	fv := New().
		Validate("username", req.Username, Username()...).
		Validate("email", req.Email, Email()...).
		Validate("password", req.Password, Required("Password"), MinLength("Password", MinPasswordLength)).
		Validate("confirmPassword", req.ConfirmPassword,
			Required("Password confirmation"), Equals("Passwords do not match.", req.Password)).
		Validate("phone", req.Phone, Pattern("Enter a valid mobile number.", phonePattern))
	if opts.RequireTerms {
		fv.Check("terms", opts.TermsAccepted, "You must accept the terms of service.")
	}
	return fv.Errors(), fv.Err()
}

// Login validates that both credentials are present.
func Login(req domainauth.LoginRequest) error {
	return New().
		Validate("username", req.Username, Required("Username")).
		Validate("password", req.Password, Required("Password")).
		Err()
}

// ChangePassword validates a password change form.
func ChangePassword(req domainauth.ChangePasswordRequest) error {
	return New().
		Validate("currentPassword", req.CurrentPassword, Required("Current password")).
		Validate("newPassword", req.NewPassword, Required("New password"), MinLength("New password", MinPasswordLength)).
		Validate("confirmPassword", req.ConfirmPassword, Equals("Passwords do not match.", req.NewPassword)).
		Err()
}

// ResetPassword validates a password reset form.
func ResetPassword(req domainauth.ResetPasswordRequest) error {
	return New().
		Validate("token", req.Token, Required("Reset token")).
		Validate("newPassword", req.NewPassword, Required("New password"), MinLength("New password", MinPasswordLength)).
		Validate("confirmPassword", req.ConfirmPassword, Equals("Passwords do not match.", req.NewPassword)).
		Err()
}

// StrengthLevel labels a password strength score.
type StrengthLevel string

const (
	StrengthWeak       StrengthLevel = "weak"
	StrengthFair       StrengthLevel = "fair"
	StrengthGood       StrengthLevel = "good"
	StrengthStrong     StrengthLevel = "strong"
	StrengthVeryStrong StrengthLevel = "very-strong"
)

// Strength scores a password from 0 to 5, one point each for a length of at
// least 8 and for containing lower case, upper case, digits and symbols.
func Strength(password string) (int, StrengthLevel) {
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	score := 0
	for _, ok := range []bool{len([]rune(password)) >= 8, lower, upper, digit, symbol} {
		if ok {
			score++
		}
	}
	return score, levelFor(score)
}

func levelFor(score int) StrengthLevel {
	switch {
	case score <= 1:
		return StrengthWeak
	case score == 2:
		return StrengthFair
	case score == 3:
		return StrengthGood
	case score == 4:
		return StrengthStrong
	default:
		return StrengthVeryStrong
	}
}
