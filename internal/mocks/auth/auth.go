package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"strings"
	"sync"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityBackend = (*StubIdentityBackend)(nil)
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
	_ ports.Navigator       = (*RecordingNavigator)(nil)
	_ ports.RoleMapper      = (*StaticRoleMapper)(nil)
)

// StubIdentityBackend answers every call from its Func fields. Unset funcs
// return zero values with no error. Calls are counted per method name.
type StubIdentityBackend struct {
	LoginFunc          func(ctx context.Context, req domainauth.LoginRequest) (domainauth.LoginResult, error)
	RegisterFunc       func(ctx context.Context, req domainauth.RegisterRequest) (domainauth.RegistrationReceipt, error)
	FetchProfileFunc   func(ctx context.Context, token string) (domainauth.UserProfile, error)
	RefreshFunc        func(ctx context.Context, refreshToken string) (domainauth.TokenPair, error)
	LogoutFunc         func(ctx context.Context, token string) error
	ForgotPasswordFunc func(ctx context.Context, req domainauth.ForgotPasswordRequest) error
	ResetPasswordFunc  func(ctx context.Context, req domainauth.ResetPasswordRequest) error
	ChangePasswordFunc func(ctx context.Context, token string, req domainauth.ChangePasswordRequest) error
	SendCodeFunc       func(ctx context.Context, req domainauth.VerificationCodeRequest) error
	VerifyEmailFunc    func(ctx context.Context, req domainauth.VerifyEmailRequest) error
	UsernameFunc       func(ctx context.Context, username string) (bool, error)
	EmailFunc          func(ctx context.Context, email string) (bool, error)

	mu    sync.Mutex
	calls map[string]int
}

func (s *StubIdentityBackend) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[name]++
}

// Calls returns how many times the named method ran.
func (s *StubIdentityBackend) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *StubIdentityBackend) Login(ctx context.Context, req domainauth.LoginRequest) (domainauth.LoginResult, error) {
	s.record("Login")
	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, req)
	}
	return domainauth.LoginResult{}, nil
}

func (s *StubIdentityBackend) Register(ctx context.Context, req domainauth.RegisterRequest) (domainauth.RegistrationReceipt, error) {
	s.record("Register")
	if s.RegisterFunc != nil {
		return s.RegisterFunc(ctx, req)
	}
	return domainauth.RegistrationReceipt{}, nil
}

func (s *StubIdentityBackend) FetchProfile(ctx context.Context, token string) (domainauth.UserProfile, error) {
	s.record("FetchProfile")
	if s.FetchProfileFunc != nil {
		return s.FetchProfileFunc(ctx, token)
	}
	return domainauth.UserProfile{}, nil
}

func (s *StubIdentityBackend) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenPair, error) {
	s.record("Refresh")
	if s.RefreshFunc != nil {
		return s.RefreshFunc(ctx, refreshToken)
	}
	return domainauth.TokenPair{}, nil
}

func (s *StubIdentityBackend) Logout(ctx context.Context, token string) error {
	s.record("Logout")
	if s.LogoutFunc != nil {
		return s.LogoutFunc(ctx, token)
	}
	return nil
}

func (s *StubIdentityBackend) ForgotPassword(ctx context.Context, req domainauth.ForgotPasswordRequest) error {
	s.record("ForgotPassword")
	if s.ForgotPasswordFunc != nil {
		return s.ForgotPasswordFunc(ctx, req)
	}
	return nil
}

func (s *StubIdentityBackend) ResetPassword(ctx context.Context, req domainauth.ResetPasswordRequest) error {
	s.record("ResetPassword")
	if s.ResetPasswordFunc != nil {
		return s.ResetPasswordFunc(ctx, req)
	}
	return nil
}

func (s *StubIdentityBackend) ChangePassword(ctx context.Context, token string, req domainauth.ChangePasswordRequest) error {
	s.record("ChangePassword")
	if s.ChangePasswordFunc != nil {
		return s.ChangePasswordFunc(ctx, token, req)
	}
	return nil
}

func (s *StubIdentityBackend) SendVerificationCode(ctx context.Context, req domainauth.VerificationCodeRequest) error {
	s.record("SendVerificationCode")
	if s.SendCodeFunc != nil {
		return s.SendCodeFunc(ctx, req)
	}
	return nil
}

func (s *StubIdentityBackend) VerifyEmail(ctx context.Context, req domainauth.VerifyEmailRequest) error {
	s.record("VerifyEmail")
	if s.VerifyEmailFunc != nil {
		return s.VerifyEmailFunc(ctx, req)
	}
	return nil
}

func (s *StubIdentityBackend) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	s.record("CheckUsernameAvailable")
	if s.UsernameFunc != nil {
		return s.UsernameFunc(ctx, username)
	}
	return true, nil
}

func (s *StubIdentityBackend) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	s.record("CheckEmailAvailable")
	if s.EmailFunc != nil {
		return s.EmailFunc(ctx, email)
	}
	return true, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
// SaveErr and ClearErr, when set, are returned instead of mutating state.
type MemorySessionStore struct {
	SaveErr  error
	ClearErr error

	mu     sync.Mutex
	sess   *domainauth.Session
	saves  int
	clears int
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// Seed stores sess without counting a save.
func (m *MemorySessionStore) Seed(sess domainauth.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := sess
	m.sess = &cp
}

// Current returns the stored session, if any.
func (m *MemorySessionStore) Current() (domainauth.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return domainauth.Session{}, false
	}
	return *m.sess, true
}

// Counts reports Save and Clear invocations.
func (m *MemorySessionStore) Counts() (saves, clears int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves, m.clears
}

func (m *MemorySessionStore) Load(_ context.Context) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return domainauth.Session{}, domainauth.ErrNoSession
	}
	return *m.sess, nil
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp := sess
	m.sess = &cp
	return nil
}

func (m *MemorySessionStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.sess = nil
	return nil
}

// RecordingNavigator remembers every navigation target.
type RecordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *RecordingNavigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

// Paths returns a copy of the recorded targets.
func (n *RecordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return nil
	}
	return append([]string(nil), n.paths...)
}

// StaticRoleMapper maps raw roles by exact (case-insensitive) lookup.
// Unlisted values map to Fallback.
type StaticRoleMapper struct {
	Roles    map[string]domainauth.Role
	Fallback domainauth.Role
}

func (m StaticRoleMapper) Map(raw string) domainauth.Role {
	if r, ok := m.Roles[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return r
	}
	return m.Fallback
}
