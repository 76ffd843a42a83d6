package auth

import "time"

// Token defaults applied when a backend omits them.
const (
	DefaultTokenType = "Bearer"
	DefaultExpiresIn = 3600
)

// LoginRequest carries credentials; Username may also be an email address.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	TokenType    string      `json:"tokenType"`
	ExpiresIn    int         `json:"expiresIn"`
	User         UserProfile `json:"userInfo"`
}

// Session converts the result into the persisted session record.
func (r LoginResult) Session() Session {
	return Session{Token: r.AccessToken, RefreshToken: r.RefreshToken, User: r.User}
}

// RegisterRequest is the registration form payload.
type RegisterRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	ConfirmPassword  string `json:"confirmPassword"`
	Phone            string `json:"phone,omitempty"`
	Company          string `json:"company,omitempty"`
	VerificationCode string `json:"verificationCode,omitempty"`
}

// NewUser is the directory insert shape derived from a RegisterRequest.
type NewUser struct {
	Username string
	Email    string
	Password string
	Phone    string
	Company  string
}

// NewUser strips the confirmation and code fields.
func (r RegisterRequest) NewUser() NewUser {
	return NewUser{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Phone:    r.Phone,
		Company:  r.Company,
	}
}

// RegistrationReceipt is the result of a registration. It never carries the password.
type RegistrationReceipt struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReceiptFor builds the receipt for a newly created record.
func ReceiptFor(u UserRecord) RegistrationReceipt {
	return RegistrationReceipt{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// TokenPair is the refresh result. TokenType and ExpiresIn may be empty
// when the backend omits them; see WithDefaults.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType,omitempty"`
	ExpiresIn    int    `json:"expiresIn,omitempty"`
}

// WithDefaults fills the token type and lifetime when missing.
func (p TokenPair) WithDefaults() TokenPair {
	if p.TokenType == "" {
		p.TokenType = DefaultTokenType
	}
	if p.ExpiresIn <= 0 {
		p.ExpiresIn = DefaultExpiresIn
	}
	return p
}

// RefreshRequest is the wire body of a refresh call.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordRequest starts the reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes the reset flow.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePasswordRequest changes the password of the authenticated user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// CodeChannel is the delivery channel of a verification code.
type CodeChannel string

const (
	CodeChannelEmail CodeChannel = "email"
	CodeChannelSMS   CodeChannel = "sms"
)

// CodePurpose is why a verification code was requested.
type CodePurpose string

const (
	PurposeRegister      CodePurpose = "register"
	PurposeLogin         CodePurpose = "login"
	PurposeResetPassword CodePurpose = "reset_password"
	PurposeChangePhone   CodePurpose = "change_phone"
	PurposeChangeEmail   CodePurpose = "change_email"
)

// VerificationCodeRequest asks for a one-time code.
type VerificationCodeRequest struct {
	Contact string      `json:"contact"`
	Type    CodeChannel `json:"type"`
	Purpose CodePurpose `json:"purpose"`
}

// VerifyEmailRequest confirms an email address.
type VerifyEmailRequest struct {
	Token string `json:"token"`
}
