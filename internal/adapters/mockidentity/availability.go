package mockidentity

import (
	"context"
	"strings"

	"github.com/smartbin/portal/internal/ports"
)

var (
	_ ports.AvailabilityChecker = DenylistChecker{}
	_ ports.AvailabilityChecker = DirectoryChecker{}
)

// DenylistChecker reports names as taken when they appear on a fixed list.
// Comparison is case-insensitive. It does not consult the directory, so a
// freshly registered name still reads as available.
type DenylistChecker struct {
	Usernames []string
	Emails    []string
}

// DefaultDenylist returns the reserved demo names.
func DefaultDenylist() DenylistChecker {
	return DenylistChecker{
		Usernames: []string{"admin", "user", "test", "demo"},
		Emails:    []string{"admin@smartbin.com", "user@example.com"},
	}
}

func (c DenylistChecker) UsernameAvailable(_ context.Context, username string) (bool, error) {
	return !containsFold(c.Usernames, username), nil
}

func (c DenylistChecker) EmailAvailable(_ context.Context, email string) (bool, error) {
	return !containsFold(c.Emails, email), nil
}

func containsFold(list []string, v string) bool {
	v = strings.ToLower(v)
	for _, item := range list {
		if strings.ToLower(item) == v {
			return true
		}
	}
	return false
}

// DirectoryChecker answers from the directory with the same exact matching
// registration uses, so availability and uniqueness agree.
type DirectoryChecker struct {
	Directory ports.UserDirectory
}

func (c DirectoryChecker) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := c.Directory.UsernameExists(ctx, username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (c DirectoryChecker) EmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := c.Directory.EmailExists(ctx, email)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
