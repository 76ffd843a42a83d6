package auth

// Package auth contains domain-level types for identities, tokens and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role is the raw role string carried by identity records.
// Keep string form for easy persistence and wire transfer.
type Role string

const (
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
	RoleCleaner Role = "cleaner"
	RoleUser    Role = "user"
)

// RoleKind is the closed set of roles the application routes on.
// Any string outside the known set maps to RoleKindUnknown.
type RoleKind int

const (
	RoleKindUnknown RoleKind = iota
	RoleKindOfficer
	RoleKindAdmin
	RoleKindCleaner
)

// Kind classifies a raw role string. Matching is case-insensitive.
func (r Role) Kind() RoleKind {
	switch Role(strings.ToLower(strings.TrimSpace(string(r)))) {
	case RoleOfficer:
		return RoleKindOfficer
	case RoleAdmin:
		return RoleKindAdmin
	case RoleCleaner:
		return RoleKindCleaner
	default:
		return RoleKindUnknown
	}
}

func (k RoleKind) String() string {
	switch k {
	case RoleKindOfficer:
		return "officer"
	case RoleKindAdmin:
		return "admin"
	case RoleKindCleaner:
		return "cleaner"
	default:
		return "unknown"
	}
}

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusPending  UserStatus = "pending"
)

// UserRecord is a stored account. Password holds plaintext for the in-memory
// directory and a bcrypt hash for the Postgres one.
type UserRecord struct {
	ID        string
	Username  string
	Email     string
	Password  string
	Avatar    string
	Nickname  string
	Phone     string
	Company   string
	Role      Role
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile projects the record without its password.
func (u UserRecord) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Nickname:  u.Nickname,
		Phone:     u.Phone,
		Company:   u.Company,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// CheckStatus rejects accounts that are not active.
func CheckStatus(u UserRecord) error {
	if u.Status != StatusActive {
		return ErrAccountDisabled
	}
	return nil
}

// UserProfile is the public view of an account as exchanged on the wire.
type UserProfile struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Avatar    string     `json:"avatar,omitempty"`
	Nickname  string     `json:"nickname,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Company   string     `json:"company,omitempty"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TokenClaims is the payload carried inside an access or refresh token.
type TokenClaims struct {
	UserID string `json:"userId"`
	Exp    int64  `json:"exp"`
}

// ExpiresAt converts the exp claim to a time.
func (c TokenClaims) ExpiresAt() time.Time { return time.Unix(c.Exp, 0) }

// Session is the client-side authenticated state. It is persisted and
// cleared as one record so the token and the profile never diverge.
type Session struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         UserProfile `json:"userInfo"`
}

// Valid reports whether the record carries both a token and a profile.
func (s Session) Valid() bool { return s.Token != "" && s.User.ID != "" }
