package memdirectory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

func TestDirectory_FindByCredential(t *testing.T) {
	d := New()
	ctx := context.Background()

	byName, err := d.FindByCredential(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "1", byName.ID)

	byEmail, err := d.FindByCredential(ctx, "cleaner@example.com", "cleaner123")
	require.NoError(t, err)
	assert.Equal(t, "2", byEmail.ID)
	assert.Equal(t, domainauth.RoleCleaner, byEmail.Role)

	_, err = d.FindByCredential(ctx, "admin", "wrong")
	require.ErrorIs(t, err, domainauth.ErrRecordNotFound)

	_, err = d.FindByCredential(ctx, "Admin", "admin123")
	require.ErrorIs(t, err, domainauth.ErrRecordNotFound, "matching is case-sensitive")
}

func TestDirectory_Create(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d := New(WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	rec, err := d.Create(ctx, domainauth.NewUser{Username: "new_user", Email: "new@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "3", rec.ID)
	assert.Equal(t, domainauth.RoleUser, rec.Role)
	assert.Equal(t, domainauth.StatusActive, rec.Status)
	assert.Equal(t, "/avatars/default.png", rec.Avatar)
	assert.Equal(t, "new_user", rec.Nickname)
	assert.Equal(t, fixed, rec.CreatedAt)

	got, err := d.FindByCredential(ctx, "new@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestDirectory_Create_Duplicates(t *testing.T) {
	d := New()
	ctx := context.Background()

	_, err := d.Create(ctx, domainauth.NewUser{Username: "admin", Email: "other@example.com", Password: "x"})
	require.ErrorIs(t, err, domainauth.ErrDuplicateUsername)

	_, err = d.Create(ctx, domainauth.NewUser{Username: "fresh", Email: "admin@smartbin.com", Password: "x"})
	require.ErrorIs(t, err, domainauth.ErrDuplicateEmail)

	// Username is checked before email.
	_, err = d.Create(ctx, domainauth.NewUser{Username: "cleaner", Email: "admin@smartbin.com", Password: "x"})
	require.ErrorIs(t, err, domainauth.ErrDuplicateUsername)

	assert.Equal(t, 2, d.Len())
}

func TestDirectory_Create_ConcurrentSameName(t *testing.T) {
	d := New()
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.Create(ctx, domainauth.NewUser{
				Username: "racer",
				Email:    fmt.Sprintf("racer%d@example.com", i),
				Password: "pw",
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			require.ErrorIs(t, err, domainauth.ErrDuplicateUsername)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 3, d.Len())
}

func TestDirectory_Exists(t *testing.T) {
	d := New()
	ctx := context.Background()

	ok, err := d.UsernameExists(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.EmailExists(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirectory_FindByID(t *testing.T) {
	d := New()
	rec, err := d.FindByID(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "cleaner", rec.Username)

	_, err = d.FindByID(context.Background(), "99")
	require.ErrorIs(t, err, domainauth.ErrRecordNotFound)
}
