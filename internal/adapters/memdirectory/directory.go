// Package memdirectory is the seeded in-memory account directory used by the
// demo identity backend. Records are appended on registration and never removed.
package memdirectory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/ports"
)

const defaultAvatar = "/avatars/default.png"

var _ ports.UserDirectory = (*Directory)(nil)

// Directory is safe for concurrent use. Create checks uniqueness and appends
// under one write lock, so two concurrent registrations of the same name
// cannot both succeed.
type Directory struct {
	mu    sync.RWMutex
	users []domainauth.UserRecord
	now   func() time.Time
}

// Option configures a Directory.
type Option func(*Directory)

// WithClock overrides the clock used for timestamps of new records.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		if now != nil {
			d.now = now
		}
	}
}

// WithRecords replaces the seed set.
func WithRecords(records []domainauth.UserRecord) Option {
	return func(d *Directory) {
		d.users = append([]domainauth.UserRecord(nil), records...)
	}
}

// New returns a directory seeded with SeedRecords unless WithRecords is given.
func New(opts ...Option) *Directory {
	d := &Directory{users: SeedRecords(), now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SeedRecords returns the demo accounts.
func SeedRecords() []domainauth.UserRecord {
	return []domainauth.UserRecord{
		{
			ID:        "1",
			Username:  "admin",
			Email:     "admin@smartbin.com",
			Password:  "admin123",
			Avatar:    "/avatars/admin.png",
			Nickname:  "Administrator",
			Phone:     "13800138000",
			Company:   "SmartBin",
			Role:      domainauth.RoleAdmin,
			Status:    domainauth.StatusActive,
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "2",
			Username:  "cleaner",
			Email:     "cleaner@example.com",
			Password:  "cleaner123",
			Avatar:    "/avatars/user.png",
			Nickname:  "Cleaner",
			Phone:     "13900139000",
			Company:   "SmartBin",
			Role:      domainauth.RoleCleaner,
			Status:    domainauth.StatusActive,
			CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	}
}

// FindByCredential matches login exactly against username or email.
func (d *Directory) FindByCredential(_ context.Context, login, password string) (domainauth.UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if (u.Username == login || u.Email == login) && u.Password == password {
			return u, nil
		}
	}
	return domainauth.UserRecord{}, domainauth.ErrRecordNotFound
}

// FindByID returns the record with the given id.
func (d *Directory) FindByID(_ context.Context, id string) (domainauth.UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domainauth.UserRecord{}, domainauth.ErrRecordNotFound
}

// Create appends a new user with role user and status active.
func (d *Directory) Create(_ context.Context, in domainauth.NewUser) (domainauth.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, u := range d.users {
		if u.Username == in.Username {
			return domainauth.UserRecord{}, fmt.Errorf("create %q: %w", in.Username, domainauth.ErrDuplicateUsername)
		}
	}
	for _, u := range d.users {
		if u.Email == in.Email {
			return domainauth.UserRecord{}, fmt.Errorf("create %q: %w", in.Email, domainauth.ErrDuplicateEmail)
		}
	}

	now := d.now().UTC()
	rec := domainauth.UserRecord{
		ID:        strconv.Itoa(len(d.users) + 1),
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Avatar:    defaultAvatar,
		Nickname:  in.Username,
		Phone:     in.Phone,
		Company:   in.Company,
		Role:      domainauth.RoleUser,
		Status:    domainauth.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.users = append(d.users, rec)
	return rec, nil
}

// UsernameExists reports an exact username match.
func (d *Directory) UsernameExists(_ context.Context, username string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// EmailExists reports an exact email match.
func (d *Directory) EmailExists(_ context.Context, email string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of records.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}
